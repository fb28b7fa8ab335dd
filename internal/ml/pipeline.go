// Package ml implements the train/score core: a standardizing scaler, an
// elastic-net linear regressor, and the immutable pipeline artifact that
// bundles both together with the exact ordered feature set they were fitted
// against. The embedded feature list is what lets the scoring stage
// self-validate instead of trusting an out-of-band constant to stay in sync.
package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"site-scout/internal/features"
)

// Pipeline is the fitted transform+model pair persisted after training and
// loaded read-only for scoring. Treated as immutable once fitted.
type Pipeline struct {
	Features  []string    `json:"features"`
	Scaler    *Scaler     `json:"scaler"`
	Model     *ElasticNet `json:"model"`
	TrainedAt time.Time   `json:"trained_at"`
}

// CheckSchema verifies the ordered feature set a view exposes matches the
// one this pipeline was fitted against. Names, order, and count must all
// agree; anything else is a contract violation.
func (p *Pipeline) CheckSchema(view string, actual []string) error {
	return features.ValidateSchema(view, p.Features, actual)
}

// Predict applies the frozen scaler and model to each raw feature vector,
// preserving input order. Rows are checked for non-finite values first; a
// bad value aborts the whole batch rather than polluting the output.
func (p *Pipeline) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(p.Features) {
			return nil, &features.ContractError{
				View:     "prediction input",
				Expected: p.Features,
				Actual:   []string{fmt.Sprintf("<%d columns>", len(row))},
			}
		}
		if err := features.CheckVector(i, row); err != nil {
			return nil, err
		}
		out[i] = p.Model.Predict(p.Scaler.Transform(row))
	}
	return out, nil
}

// Save persists the pipeline as a single JSON artifact. The write is
// temp-file-then-rename so a crashed run never leaves a half-written
// artifact visible under the final name.
func (p *Pipeline) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pipeline: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Load reads a previously persisted pipeline. A missing or malformed file
// surfaces as an ArtifactError carrying the path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactError{Path: path, Err: err}
	}

	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &ArtifactError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if len(p.Features) == 0 || p.Scaler == nil || p.Model == nil {
		return nil, &ArtifactError{Path: path, Err: fmt.Errorf("incomplete artifact")}
	}
	if len(p.Scaler.Mean) != len(p.Features) || len(p.Model.Weights) != len(p.Features) {
		return nil, &ArtifactError{Path: path, Err: fmt.Errorf("artifact dimensions disagree with its feature schema")}
	}
	return &p, nil
}
