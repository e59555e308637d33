package protocol

import (
	"DumpSpectra/internal/model"
	"regexp"
	"strings"
)

var (
	hostIPPattern      = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
	hostMachinePattern = regexp.MustCompile(`\b[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\b`)
	hostSitePattern    = regexp.MustCompile(`\b[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\b`)
)

// ExtractHost reads the machine name, first IPv4 literal and first
// three-label name of a line starting with timestampPrefix. The timestamp
// field itself is skipped so "01.123456" is never taken for a machine name.
// ok is false for lines without the prefix.
func ExtractHost(text, timestampPrefix string) (model.HostInfo, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, timestampPrefix) {
		return model.HostInfo{}, false
	}
	_, rest, _ := strings.Cut(trimmed, " ")

	return model.HostInfo{
		MachineName: hostMachinePattern.FindString(rest),
		IPAddress:   hostIPPattern.FindString(rest),
		Website:     hostSitePattern.FindString(rest),
	}, true
}

// ExtractPair returns the source and destination of a line, ok false when the
// "IP <src> > <dst>" pattern is absent.
func ExtractPair(text string) (model.Pair, bool) {
	m := pairPattern.FindStringSubmatch(text)
	if m == nil {
		return model.Pair{}, false
	}
	return model.Pair{Source: m[1], Destination: m[2]}, true
}
