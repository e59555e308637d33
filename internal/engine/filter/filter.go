// Package filter selects candidate lines from a capture before extraction.
//
// Keywords feeds the protocol and flag analysis; Headers feeds
// source/destination extraction.
package filter

import (
	"DumpSpectra/internal/model"
	"iter"
	"strings"
)

// DefaultKeywords is the keyword set used by the analysis mode.
var DefaultKeywords = []string{"http", "https", "ssh", "ICMP", "Flags"}

// Keywords keeps the lines containing at least one of the keywords.
func Keywords(lines iter.Seq[model.RawLine], keywords []string) iter.Seq[model.RawLine] {
	return func(yield func(model.RawLine) bool) {
		for line := range lines {
			if !containsAny(line.Text, keywords) {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Headers keeps the lines that begin with timestampPrefix or that do not begin
// with hexMarker, which drops hex-dump continuation lines. Leading whitespace
// is ignored for both tests. Blank lines are dropped.
func Headers(lines iter.Seq[model.RawLine], timestampPrefix, hexMarker string) iter.Seq[model.RawLine] {
	return func(yield func(model.RawLine) bool) {
		for line := range lines {
			if !IsHeader(line.Text, timestampPrefix, hexMarker) {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// IsHeader is the predicate behind Headers.
func IsHeader(text, timestampPrefix, hexMarker string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if timestampPrefix != "" && strings.HasPrefix(trimmed, timestampPrefix) {
		return true
	}
	return !strings.HasPrefix(trimmed, hexMarker)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
