package ml

import (
	"github.com/rs/zerolog/log"

	"site-scout/internal/features"
)

// Prediction is one scored candidate: its coordinates and the predicted
// profit. Output order matches candidate input order exactly.
type Prediction struct {
	Lat             float64
	Lon             float64
	PredictedProfit float64
}

// Score applies a frozen pipeline to unlabeled candidate sites. viewColumns
// is the ordered feature set the candidate view exposes; it must match the
// schema embedded in the artifact before a single row is scored. This check
// is the load-bearing guard of the whole system: a scaler fitted on one
// ordering applied to another produces plausible-looking nonsense.
func Score(p *Pipeline, viewColumns []string, sites []features.Site) ([]Prediction, error) {
	if err := p.CheckSchema("features_candidates", viewColumns); err != nil {
		return nil, err
	}

	rows := make([][]float64, len(sites))
	for i, s := range sites {
		rows[i] = features.Vector(s)
	}

	predicted, err := p.Predict(rows)
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, len(sites))
	for i, s := range sites {
		out[i] = Prediction{Lat: s.Lat, Lon: s.Lon, PredictedProfit: predicted[i]}
	}

	log.Info().Int("candidates", len(out)).Msg("scoring run complete")
	return out, nil
}
