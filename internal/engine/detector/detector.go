// Package detector flags hosts whose activity stands out from the rest of a capture.
//
// Detect is a one-pass mean rule: a host is suspicious when its
// tally is strictly above the arithmetic mean of all tallies. There is no
// variance or z-score involved.
package detector

import (
	"DumpSpectra/internal/model"
	"errors"
)

// ErrNoData is returned when there is nothing to compute a mean over.
var ErrNoData = errors.New("detector: no addresses observed")

// Detect computes the mean of the counter's values and returns every entry
// strictly above it, in insertion order.
func Detect(byAddress *model.Counter) (model.AnomalyReport, error) {
	if byAddress == nil || byAddress.Len() == 0 {
		return model.AnomalyReport{}, ErrNoData
	}

	entries := byAddress.Entries()
	mean := float64(byAddress.Total()) / float64(len(entries))

	report := model.AnomalyReport{Mean: mean, Suspects: []model.Entry{}}
	for _, e := range entries {
		if float64(e.Count) > mean {
			report.Suspects = append(report.Suspects, e)
		}
	}
	return report, nil
}

// OverThreshold returns every entry whose count is at least threshold, in
// insertion order. It is independent of Detect and of the mean.
func OverThreshold(counter *model.Counter, threshold int) []model.Entry {
	var out []model.Entry
	if counter == nil {
		return out
	}
	for _, e := range counter.Entries() {
		if e.Count >= threshold {
			out = append(out, e)
		}
	}
	return out
}
