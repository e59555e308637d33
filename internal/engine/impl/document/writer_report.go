// Package document writes the Markdown and HTML analysis report.
package document

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/factory"
	"DumpSpectra/internal/model"
	"DumpSpectra/internal/report"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// File names of the report artifacts.
const (
	MarkdownFileName = "report.md"
	HTMLFileName     = "report.html"
)

func init() {
	factory.RegisterWriter("report", func(cfg *config.Config) (model.Writer, error) {
		return NewReportWriter(cfg.OutputDir, cfg.Report, cfg.Detector.HostThreshold, report.NewPlotRenderer()), nil
	})
}

// ReportWriter renders the report of an analysis run. Extraction runs carry
// no anomaly data and get the same document without the suspicious section.
type ReportWriter struct {
	rootPath  string
	cfg       config.ReportConfig
	threshold int
	chart     report.ChartRenderer
}

// NewReportWriter creates a report writer. A nil chart renderer disables the chart.
func NewReportWriter(rootPath string, cfg config.ReportConfig, threshold int, chart report.ChartRenderer) *ReportWriter {
	return &ReportWriter{rootPath: rootPath, cfg: cfg, threshold: threshold, chart: chart}
}

func (w *ReportWriter) Name() string {
	return "report"
}

func (w *ReportWriter) Write(result *model.Result) error {
	if err := os.MkdirAll(w.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	opts := report.Options{
		Title:                     w.cfg.Title,
		Source:                    result.Source,
		Watchlist:                 w.cfg.Watchlist,
		ChartFile:                 w.renderChart(result.Anomalies),
		Threshold:                 w.threshold,
		OverThresholdSources:      result.OverThresholdSources,
		OverThresholdDestinations: result.OverThresholdDestinations,
		TopPairs:                  w.cfg.TopPairs,
	}
	doc := report.Build(result.Counters, result.Anomalies, opts)

	mdPath := filepath.Join(w.rootPath, MarkdownFileName)
	if err := os.WriteFile(mdPath, []byte(doc.Markdown), 0644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	htmlPath := filepath.Join(w.rootPath, HTMLFileName)
	if err := os.WriteFile(htmlPath, []byte(doc.HTML()), 0644); err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}

	log.Infof("Wrote report to %s", mdPath)
	return nil
}

// renderChart draws the suspect shares and returns the file name to reference,
// or "" when there is nothing to draw or drawing failed.
func (w *ReportWriter) renderChart(anomalies *model.AnomalyReport) string {
	if w.chart == nil || w.cfg.ChartFile == "" {
		return ""
	}
	labels, values := report.SuspectShares(anomalies)
	if len(values) == 0 {
		return ""
	}
	path := filepath.Join(w.rootPath, w.cfg.ChartFile)
	if err := w.chart.Render(path, "Suspicious activity", labels, values); err != nil {
		log.WithError(err).Warn("Failed to render chart, continuing without it")
		return ""
	}
	return w.cfg.ChartFile
}
