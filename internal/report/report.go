// Package report writes the durable outputs of a pipeline run: evaluation
// metrics, prediction tables, the feature ranking, and diagnostic charts.
// Nothing here is read back by any other component.
//
// Every file is written temp-then-rename so a failed run never leaves a
// truncated output visible under its final name.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"site-scout/internal/ml"
)

const (
	metricsFile     = "metrics.json"
	predictionsFile = "predictions_train.csv"
	importanceFile  = "feature_importance.csv"
	scoredFile      = "scored_candidates.csv"
	chartsDir       = "charts"
	scatterChart    = "actual_vs_predicted.png"
	residualsChart  = "residuals_hist.png"
	importanceChart = "feature_importance.png"
)

// Reporter writes run outputs under a single output directory.
type Reporter struct {
	outDir string
}

// NewReporter creates a reporter rooted at outDir.
func NewReporter(outDir string) *Reporter {
	return &Reporter{outDir: outDir}
}

// WriteTrainingOutputs persists everything a training run produces except
// the model artifact itself (the trainer owns that).
func (r *Reporter) WriteTrainingOutputs(res *ml.TrainResult) error {
	if err := os.MkdirAll(filepath.Join(r.outDir, chartsDir), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := r.writeMetrics(res.Metrics); err != nil {
		return err
	}
	if err := r.writeTrainPredictions(res.Predictions); err != nil {
		return err
	}
	if err := r.writeFeatureImportance(res.Ranking); err != nil {
		return err
	}
	if err := r.writeCharts(res.Predictions, res.Ranking); err != nil {
		return err
	}

	log.Info().Str("outdir", r.outDir).Msg("training outputs written")
	return nil
}

// WriteScoredCandidates persists the scoring run's prediction table, one row
// per candidate, input order preserved.
func (r *Reporter) WriteScoredCandidates(preds []ml.Prediction) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(r.outDir, scoredFile)
	err := writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"lat", "lon", "predicted_profit"}); err != nil {
			return err
		}
		for _, p := range preds {
			record := []string{fmtFloat(p.Lat), fmtFloat(p.Lon), fmtFloat(p.PredictedProfit)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("write scored candidates: %w", err)
	}

	log.Info().Int("rows", len(preds)).Str("file", path).Msg("scored candidates written")
	return nil
}

func (r *Reporter) writeMetrics(m ml.Metrics) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	path := filepath.Join(r.outDir, metricsFile)
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (r *Reporter) writeTrainPredictions(preds []ml.SitePrediction) error {
	path := filepath.Join(r.outDir, predictionsFile)
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"lat", "lon", "actual_profit", "predicted_profit"}); err != nil {
			return err
		}
		for _, p := range preds {
			record := []string{
				fmtFloat(p.Lat),
				fmtFloat(p.Lon),
				fmtFloat(p.ActualProfit),
				fmtFloat(p.PredictedProfit),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func (r *Reporter) writeFeatureImportance(ranking []ml.FeatureWeight) error {
	path := filepath.Join(r.outDir, importanceFile)
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"feature", "importance"}); err != nil {
			return err
		}
		for _, fw := range ranking {
			if err := cw.Write([]string{fw.Feature, fmtFloat(fw.Weight)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place once the write has fully succeeded.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
