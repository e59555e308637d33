// Package report renders the counters and anomaly list of a run into Markdown.
package report

import (
	"DumpSpectra/internal/model"
	"fmt"
	"slices"
	"strings"
	"time"
)

const clockLayout = "15:04:05.000000"

// unavailable is printed in place of derived values that could not be computed.
const unavailable = "unavailable"

// Options holds everything Build needs besides the counters.
type Options struct {
	Title     string
	Source    string
	Watchlist []string
	// ChartFile is the image referenced from the document; empty omits the section.
	ChartFile                 string
	Threshold                 int
	OverThresholdSources      []model.Entry
	OverThresholdDestinations []model.Entry
	TopPairs                  int
}

// Document is a rendered Markdown report.
type Document struct {
	Markdown string
}

// HTML renders the document through the Markdown collaborator.
func (d Document) HTML() string {
	return ToHTML(d.Markdown)
}

// SortAscending orders entries by count, keeping insertion order between ties.
func SortAscending(entries []model.Entry) []model.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b model.Entry) int {
		return a.Count - b.Count
	})
	return out
}

// Build renders the report. A nil anomalies report means the detector had no
// data, and the suspicious activity section is left out.
func Build(c *model.Counters, anomalies *model.AnomalyReport, opts Options) Document {
	var b strings.Builder

	title := opts.Title
	if title == "" {
		title = "Traffic analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	writeSummary(&b, c, opts.Source)

	b.WriteString("## Sources (ascending)\n\n")
	writeEntries(&b, SortAscending(c.BySource.Entries()), true, "requests")

	b.WriteString("## Destinations (ascending)\n\n")
	writeEntries(&b, SortAscending(c.ByDestination.Entries()), true, "visits")

	if anomalies != nil {
		writeSuspicious(&b, c, anomalies, opts.Watchlist)
	}

	writeStatistics(&b, c)

	if opts.ChartFile != "" {
		b.WriteString("## Chart\n\n")
		fmt.Fprintf(&b, "![Suspicious activity](%s)\n\n", opts.ChartFile)
	}

	fmt.Fprintf(&b, "## Sources over threshold (>= %d)\n\n", opts.Threshold)
	writeEntries(&b, opts.OverThresholdSources, true, "requests")

	fmt.Fprintf(&b, "## Destinations over threshold (>= %d)\n\n", opts.Threshold)
	writeEntries(&b, opts.OverThresholdDestinations, true, "visits")

	writePairs(&b, c.Pairs.Entries(), opts.TopPairs)

	b.WriteString("## Services\n\n")
	writeEntries(&b, SortDescending(c.ByService.Entries()), false, "frames")

	b.WriteString("## Address tally\n\n")
	writeEntries(&b, c.ByAddress.Entries(), false, "occurrences")

	return Document{Markdown: b.String()}
}

// SortDescending orders entries by decreasing count, keeping insertion order between ties.
func SortDescending(entries []model.Entry) []model.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b model.Entry) int {
		return b.Count - a.Count
	})
	return out
}

func writeSummary(b *strings.Builder, c *model.Counters, source string) {
	fmt.Fprintf(b, "## Frames: %d\n\n", c.Frames)
	if source != "" {
		fmt.Fprintf(b, "- Capture: `%s`\n", source)
	}
	first, last, ok := c.CaptureWindow()
	if ok {
		fmt.Fprintf(b, "- First frame: %s\n", first.Format(clockLayout))
		fmt.Fprintf(b, "- Last frame: %s\n", last.Format(clockLayout))
	} else {
		fmt.Fprintf(b, "- First frame: %s\n", unavailable)
		fmt.Fprintf(b, "- Last frame: %s\n", unavailable)
	}
	fmt.Fprintf(b, "- Duration: %s\n", FormatDuration(c))
	fmt.Fprintf(b, "- Malformed timestamps: %d\n\n", c.MalformedTimestamps)
}

func writeSuspicious(b *strings.Builder, c *model.Counters, anomalies *model.AnomalyReport, watchlist []string) {
	b.WriteString("## Suspicious activity\n\n")
	for _, host := range watchlist {
		if n, ok := c.BySource.Get(host); ok {
			fmt.Fprintf(b, "- **%s** : %d requests (watch-list)\n", host, n)
		}
	}
	fmt.Fprintf(b, "\nMean address tally: %.2f\n\n", anomalies.Mean)
	writeEntries(b, anomalies.Suspects, false, "occurrences")
}

func writeStatistics(b *strings.Builder, c *model.Counters) {
	b.WriteString("## Protocols and statistics\n\n")
	fmt.Fprintf(b, "- SSH: %d\n", c.Protocol(model.ProtoSSH))
	fmt.Fprintf(b, "- HTTP: %d\n", c.HTTPOnly())
	fmt.Fprintf(b, "- HTTPS: %d\n", c.Protocol(model.ProtoHTTPS))
	fmt.Fprintf(b, "- DNS: %d\n", c.Protocol(model.ProtoDNS))
	fmt.Fprintf(b, "- ICMP: %d\n", c.ICMPTotal())
	fmt.Fprintf(b, "- ICMP requests: %d\n", c.Protocol(model.ProtoICMPRequest))
	fmt.Fprintf(b, "- ICMP replies: %d\n\n", c.Protocol(model.ProtoICMPReply))

	b.WriteString("### TCP flags\n\n")
	fmt.Fprintf(b, "- Connection requests (SYN): %d\n", c.Flag(model.FlagSYN))
	fmt.Fprintf(b, "- SYN-ACK: %d\n", c.Flag(model.FlagSYNACK))
	fmt.Fprintf(b, "- Teardown (FIN): %d\n", c.Flag(model.FlagFIN))
	fmt.Fprintf(b, "- Push: %d\n", c.Flag(model.FlagPUSH))
	fmt.Fprintf(b, "- Ack only: %d\n\n", c.Flag(model.FlagACKOnly))
}

func writePairs(b *strings.Builder, pairs []model.PairEntry, top int) {
	b.WriteString("## Top source → destination pairs\n\n")
	slices.SortStableFunc(pairs, func(x, y model.PairEntry) int {
		return y.Count - x.Count
	})
	if top > 0 && len(pairs) > top {
		pairs = pairs[:top]
	}
	if len(pairs) == 0 {
		b.WriteString("_none_\n\n")
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(b, "- %s → %s : %d\n", p.Pair.Source, p.Pair.Destination, p.Count)
	}
	b.WriteString("\n")
}

func writeEntries(b *strings.Builder, entries []model.Entry, bold bool, unit string) {
	if len(entries) == 0 {
		b.WriteString("_none_\n\n")
		return
	}
	for _, e := range entries {
		if bold {
			fmt.Fprintf(b, "- **%s** : %d %s\n", e.Key, e.Count, unit)
		} else {
			fmt.Fprintf(b, "- %s : %d %s\n", e.Key, e.Count, unit)
		}
	}
	b.WriteString("\n")
}

// FormatDuration renders a capture duration, or "unavailable" when the window is unknown.
func FormatDuration(c *model.Counters) string {
	first, last, ok := c.CaptureWindow()
	if !ok {
		return unavailable
	}
	return last.Sub(first).Round(time.Microsecond).String()
}
