package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	enMaxIter = 1000
	enTol     = 1e-7
)

// ElasticNet is a linear regressor with combined L1/L2 regularization,
// fitted by cyclic coordinate descent. The sweep order is fixed, so a fit
// over identical input is bit-for-bit reproducible.
//
// The objective matches the usual parameterization:
//
//	(1/2n)·||y - Xw - b||² + alpha·l1Ratio·||w||₁ + (alpha·(1-l1Ratio)/2)·||w||²
type ElasticNet struct {
	Alpha     float64   `json:"alpha"`
	L1Ratio   float64   `json:"l1_ratio"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// NewElasticNet returns an unfitted model with the given penalties.
func NewElasticNet(alpha, l1Ratio float64) *ElasticNet {
	return &ElasticNet{Alpha: alpha, L1Ratio: l1Ratio}
}

// Fit runs coordinate descent on rows that have already been standardized.
// Columns are centered by the scaler, so the intercept is just the label
// mean and stays fixed across sweeps.
func (m *ElasticNet) Fit(rows [][]float64, y []float64) error {
	n := len(rows)
	if n == 0 || n != len(y) {
		return fmt.Errorf("elastic net fit: %d rows vs %d labels", n, len(y))
	}
	dim := len(rows[0])

	m.Intercept = floats.Sum(y) / float64(n)
	m.Weights = make([]float64, dim)

	// Per-column mean of squares, the denominator of each coordinate update.
	sq := make([]float64, dim)
	for _, row := range rows {
		for j, v := range row {
			sq[j] += v * v
		}
	}
	for j := range sq {
		sq[j] /= float64(n)
	}

	// Residuals with the current (zero) weights.
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - m.Intercept
	}

	l1 := m.Alpha * m.L1Ratio
	l2 := m.Alpha * (1 - m.L1Ratio)

	for iter := 0; iter < enMaxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < dim; j++ {
			if sq[j] == 0 {
				continue
			}
			old := m.Weights[j]

			// rho is the correlation of column j with the residual that
			// excludes column j's own contribution.
			rho := 0.0
			for i, row := range rows {
				rho += row[j] * (resid[i] + row[j]*old)
			}
			rho /= float64(n)

			w := softThreshold(rho, l1) / (sq[j] + l2)
			if w != old {
				for i, row := range rows {
					resid[i] -= row[j] * (w - old)
				}
				m.Weights[j] = w
			}
			if d := math.Abs(w - old); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < enTol {
			break
		}
	}
	return nil
}

// Predict returns the fitted linear response for one standardized row.
func (m *ElasticNet) Predict(row []float64) float64 {
	return floats.Dot(m.Weights, row) + m.Intercept
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}
