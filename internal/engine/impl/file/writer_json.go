package file

import (
	"DumpSpectra/internal/model"
	"DumpSpectra/internal/report"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// SummaryFileName is the machine-readable summary of a run.
const SummaryFileName = "summary.json"

// SummaryData holds the scalar statistics of a run.
type SummaryData struct {
	Source              string         `json:"source"`
	Mode                string         `json:"mode"`
	Timestamp           string         `json:"timestamp"`
	Frames              int            `json:"frames"`
	Sources             int            `json:"sources"`
	Destinations        int            `json:"destinations"`
	Addresses           int            `json:"addresses"`
	Pairs               int            `json:"pairs"`
	HTTPOnly            int            `json:"http_only"`
	ICMPTotal           int            `json:"icmp_total"`
	Protocols           map[string]int `json:"protocols"`
	Flags               map[string]int `json:"flags"`
	Duration            string         `json:"duration"`
	MalformedTimestamps int            `json:"malformed_timestamps"`
	// Mean and Suspects are absent when the detector had no data.
	Mean     *float64       `json:"mean,omitempty"`
	Suspects map[string]int `json:"suspects,omitempty"`
	InputErr string         `json:"input_error,omitempty"`
}

// Summarize collects the scalar statistics of a result.
func Summarize(result *model.Result) SummaryData {
	c := result.Counters
	s := SummaryData{
		Source:              result.Source,
		Mode:                result.Mode,
		Timestamp:           result.Generated.UTC().Format(time.RFC3339),
		Frames:              c.Frames,
		Sources:             c.BySource.Len(),
		Destinations:        c.ByDestination.Len(),
		Addresses:           c.ByAddress.Len(),
		Pairs:               c.Pairs.Len(),
		HTTPOnly:            c.HTTPOnly(),
		ICMPTotal:           c.ICMPTotal(),
		Protocols:           toMap(c.ByProtocol),
		Flags:               toMap(c.ByFlag),
		Duration:            report.FormatDuration(c),
		MalformedTimestamps: c.MalformedTimestamps,
	}
	if result.Anomalies != nil {
		mean := result.Anomalies.Mean
		s.Mean = &mean
		s.Suspects = make(map[string]int, len(result.Anomalies.Suspects))
		for _, e := range result.Anomalies.Suspects {
			s.Suspects[e.Key] = e.Count
		}
	}
	if result.InputErr != nil {
		s.InputErr = result.InputErr.Error()
	}
	return s
}

func toMap(c *model.Counter) map[string]int {
	m := make(map[string]int, c.Len())
	for _, e := range c.Entries() {
		m[e.Key] = e.Count
	}
	return m
}

// JSONWriter writes summary.json.
type JSONWriter struct {
	rootPath string
}

// NewJSONWriter creates a new summary writer rooted at rootPath.
func NewJSONWriter(rootPath string) model.Writer {
	return &JSONWriter{rootPath: rootPath}
}

func (w *JSONWriter) Name() string {
	return "json"
}

func (w *JSONWriter) Write(result *model.Result) (err error) {
	summaryFile, err := create(w.rootPath, SummaryFileName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := summaryFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close summary file: %w", cerr)
		}
	}()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(Summarize(result)); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}

	log.Debugf("Wrote summary to %s", w.rootPath)
	return nil
}
