package report

import (
	"fmt"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"site-scout/internal/ml"
)

// maxChartedFeatures caps the importance bar chart; past this point the
// labels stop being readable.
const maxChartedFeatures = 15

// writeCharts renders the training diagnostics: actual-vs-predicted scatter
// with an identity reference line, a residual histogram, and a bar chart of
// the leading coefficients. Each figure gets its own plot value, released
// when the render completes.
func (r *Reporter) writeCharts(preds []ml.SitePrediction, ranking []ml.FeatureWeight) error {
	scatterPath := filepath.Join(r.outDir, chartsDir, scatterChart)
	if err := writeScatterChart(preds, scatterPath); err != nil {
		return fmt.Errorf("render %s: %w", scatterChart, err)
	}

	histPath := filepath.Join(r.outDir, chartsDir, residualsChart)
	if err := writeResidualsChart(preds, histPath); err != nil {
		return fmt.Errorf("render %s: %w", residualsChart, err)
	}

	impPath := filepath.Join(r.outDir, chartsDir, importanceChart)
	if err := writeImportanceChart(ranking, impPath); err != nil {
		return fmt.Errorf("render %s: %w", importanceChart, err)
	}
	return nil
}

func writeScatterChart(preds []ml.SitePrediction, path string) error {
	p := plot.New()
	p.Title.Text = "Actual vs Predicted Profit"
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"

	xys := make(plotter.XYs, len(preds))
	lo, hi := preds[0].ActualProfit, preds[0].ActualProfit
	for i, pr := range preds {
		xys[i].X = pr.ActualProfit
		xys[i].Y = pr.PredictedProfit
		for _, v := range []float64{pr.ActualProfit, pr.PredictedProfit} {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}

	// Identity reference: a perfect model would put every point on it.
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return err
	}

	p.Add(scatter, identity)
	return savePlot(p, 7*vg.Inch, 6*vg.Inch, path)
}

func writeResidualsChart(preds []ml.SitePrediction, path string) error {
	p := plot.New()
	p.Title.Text = "Residuals (Actual - Predicted)"
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Frequency"

	residuals := make(plotter.Values, len(preds))
	for i, pr := range preds {
		residuals[i] = pr.ActualProfit - pr.PredictedProfit
	}

	hist, err := plotter.NewHist(residuals, 30)
	if err != nil {
		return err
	}

	p.Add(hist)
	return savePlot(p, 7*vg.Inch, 5*vg.Inch, path)
}

// writeImportanceChart renders the strongest standardized coefficients as
// signed bars. The ranking is already sorted by magnitude, so taking a prefix
// keeps the most influential features.
func writeImportanceChart(ranking []ml.FeatureWeight, path string) error {
	top := ranking
	if len(top) > maxChartedFeatures {
		top = top[:maxChartedFeatures]
	}

	p := plot.New()
	p.Title.Text = "Feature Importance (Std. Coefficients)"
	p.Y.Label.Text = "Coefficient"

	values := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, fw := range top {
		values[i] = fw.Weight
		names[i] = fw.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}

	p.Add(bars)
	p.NominalX(names...)
	return savePlot(p, 8*vg.Inch, 5*vg.Inch, path)
}

// savePlot renders through the atomic writer instead of plot.Save, keeping
// chart files under the same no-partial-output rule as every other output.
func savePlot(p *plot.Plot, w, h vg.Length, path string) error {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return err
	}
	return writeAtomic(path, func(out io.Writer) error {
		_, err := wt.WriteTo(out)
		return err
	})
}
