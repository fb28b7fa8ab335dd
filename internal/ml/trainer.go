package ml

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"site-scout/internal/features"
)

// minTrainRecords is the smallest labeled set that still yields a non-empty
// train and eval partition.
const minTrainRecords = 2

// Metrics holds the held-out quality measures of one training run.
type Metrics struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
}

// SitePrediction pairs a site's coordinates with its actual and predicted
// profit. Produced for the full-set diagnostic pass.
type SitePrediction struct {
	Lat             float64
	Lon             float64
	ActualProfit    float64
	PredictedProfit float64
}

// FeatureWeight is one entry of the coefficient-magnitude ranking.
type FeatureWeight struct {
	Feature string
	Weight  float64
}

// TrainResult bundles everything a training run produces: the fitted
// pipeline, held-out metrics, full-set diagnostic predictions, and the
// feature ranking.
type TrainResult struct {
	Pipeline    *Pipeline
	Metrics     Metrics
	Predictions []SitePrediction
	Ranking     []FeatureWeight
	TrainRows   int
	EvalRows    int
}

// Trainer fits a scaler+elastic-net pipeline on labeled sites. The split is
// seeded, so two runs over identical input produce the identical partition
// and bit-identical metrics.
type Trainer struct {
	Seed     int64
	TestSize float64
	Alpha    float64
	L1Ratio  float64
}

// Train partitions the labeled set, fits the pipeline on the training
// partition only, evaluates it against the held-out partition, and computes
// the diagnostic outputs. Nothing is written to disk here; callers persist
// the result only after the whole run has succeeded.
func (t Trainer) Train(sites []features.LabeledSite) (*TrainResult, error) {
	if len(sites) < minTrainRecords {
		return nil, &InsufficientDataError{Got: len(sites), Need: minTrainRecords}
	}

	rows := make([][]float64, len(sites))
	labels := make([]float64, len(sites))
	for i, s := range sites {
		rows[i] = features.Vector(s.Site)
		if err := features.CheckVector(i, rows[i]); err != nil {
			return nil, err
		}
		if err := features.CheckLabel(i, s.Profit); err != nil {
			return nil, err
		}
		labels[i] = s.Profit
	}

	trainIdx, evalIdx := splitIndices(len(sites), t.TestSize, t.Seed)

	trainRows := gather(rows, trainIdx)
	trainY := gatherVals(labels, trainIdx)

	// The scaler sees only the training partition; fitting it on the full
	// set would leak evaluation moments into the fit.
	scaler, err := FitScaler(trainRows)
	if err != nil {
		return nil, err
	}

	model := NewElasticNet(t.Alpha, t.L1Ratio)
	if err := model.Fit(scaler.TransformAll(trainRows), trainY); err != nil {
		return nil, err
	}

	pipe := &Pipeline{
		Features:  append([]string{}, features.Names...),
		Scaler:    scaler,
		Model:     model,
		TrainedAt: time.Now().UTC(),
	}

	evalPred, err := pipe.Predict(gather(rows, evalIdx))
	if err != nil {
		return nil, err
	}
	metrics := evaluate(gatherVals(labels, evalIdx), evalPred)

	// Full-set predictions over train ∪ eval, recomputed with the frozen
	// pipeline. Diagnostic output only: the model has seen the training
	// partition, so these must never be read as evaluation quality.
	fullPred, err := pipe.Predict(rows)
	if err != nil {
		return nil, err
	}
	preds := make([]SitePrediction, len(sites))
	for i, s := range sites {
		preds[i] = SitePrediction{
			Lat:             s.Lat,
			Lon:             s.Lon,
			ActualProfit:    s.Profit,
			PredictedProfit: fullPred[i],
		}
	}

	log.Info().
		Int("train_rows", len(trainIdx)).
		Int("eval_rows", len(evalIdx)).
		Float64("r2", metrics.R2).
		Float64("mae", metrics.MAE).
		Msg("training run complete")

	return &TrainResult{
		Pipeline:    pipe,
		Metrics:     metrics,
		Predictions: preds,
		Ranking:     rankFeatures(pipe.Features, model.Weights),
		TrainRows:   len(trainIdx),
		EvalRows:    len(evalIdx),
	}, nil
}

// splitIndices shuffles 0..n-1 with a fixed seed and carves off the first
// ceil(n*testSize) indices as the evaluation partition. Both partitions are
// guaranteed non-empty for n >= 2.
func splitIndices(n int, testSize float64, seed int64) (train, eval []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nEval := int(math.Ceil(float64(n) * testSize))
	if nEval < 1 {
		nEval = 1
	}
	if nEval >= n {
		nEval = n - 1
	}
	return idx[nEval:], idx[:nEval]
}

// evaluate computes R² and MAE of predictions against held-out labels.
func evaluate(actual, predicted []float64) Metrics {
	var ssRes, sumAbs float64
	mean := stat.Mean(actual, nil)
	var ssTot float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		sumAbs += math.Abs(d)
		dm := actual[i] - mean
		ssTot += dm * dm
	}

	// Zero label variance in the held-out partition (inevitable when it
	// holds a single row) leaves the R² ratio undefined. Follow the usual
	// convention: 1 for a perfect fit, 0 otherwise, never NaN, so the
	// metrics stay JSON-encodable.
	r2 := 1.0
	switch {
	case ssTot > 0:
		r2 = 1 - ssRes/ssTot
	case ssRes > 0:
		r2 = 0
	}
	return Metrics{
		R2:  r2,
		MAE: sumAbs / float64(len(actual)),
	}
}

// rankFeatures orders features by absolute coefficient, descending. Inputs
// are pre-scaled, so magnitude is a comparable influence proxy. The sort is
// stable: ties keep declaration order.
func rankFeatures(names []string, weights []float64) []FeatureWeight {
	ranking := make([]FeatureWeight, len(names))
	for i, name := range names {
		ranking[i] = FeatureWeight{Feature: name, Weight: weights[i]}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return math.Abs(ranking[i].Weight) > math.Abs(ranking[j].Weight)
	})
	return ranking
}

func gather(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, k := range idx {
		out[i] = rows[k]
	}
	return out
}

func gatherVals(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, k := range idx {
		out[i] = vals[k]
	}
	return out
}
