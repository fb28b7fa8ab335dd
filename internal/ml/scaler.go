package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes features to zero mean and unit variance. Moments are
// fitted once on the training partition and frozen; the evaluation partition
// and every candidate row are transformed with the training moments.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column population mean and standard deviation over
// the given rows. Constant columns get std 1 so transforming them yields 0
// instead of dividing by zero.
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit scaler: no rows")
	}

	dim := len(rows[0])
	col := make([]float64, len(rows))
	s := &Scaler{
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
	}

	for j := 0; j < dim; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.PopStdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s, nil
}

// Transform returns a standardized copy of row using the frozen moments.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll standardizes every row, returning new slices.
func (s *Scaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
