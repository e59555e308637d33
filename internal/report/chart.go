package report

import (
	"DumpSpectra/internal/model"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartRenderer draws labeled values to an image file.
type ChartRenderer interface {
	Render(path, title string, labels []string, values []float64) error
}

// PlotRenderer renders a proportion bar chart with gonum/plot. The image
// format follows the file extension.
type PlotRenderer struct {
	Width, Height vg.Length
}

// NewPlotRenderer creates a renderer with the default image size.
func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{Width: 10 * vg.Inch, Height: 7 * vg.Inch}
}

// Render writes the chart to path.
func (r *PlotRenderer) Render(path, title string, labels []string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("nothing to chart")
	}
	if len(labels) != len(values) {
		return fmt.Errorf("got %d labels for %d values", len(labels), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Share (%)"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 240, G: 128, B: 128, A: 255}
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(r.Width, r.Height, path); err != nil {
		return fmt.Errorf("failed to save chart '%s': %w", path, err)
	}
	return nil
}

// SuspectShares turns the suspects into labels and percentage shares of their
// combined tally.
func SuspectShares(anomalies *model.AnomalyReport) ([]string, []float64) {
	if anomalies == nil || len(anomalies.Suspects) == 0 {
		return nil, nil
	}
	total := 0
	for _, s := range anomalies.Suspects {
		total += s.Count
	}
	labels := make([]string, len(anomalies.Suspects))
	values := make([]float64, len(anomalies.Suspects))
	for i, s := range anomalies.Suspects {
		labels[i] = s.Key
		values[i] = 100 * float64(s.Count) / float64(total)
	}
	return labels, values
}
