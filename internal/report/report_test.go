package report

import (
	"DumpSpectra/internal/model"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSortAscending_StableTies(t *testing.T) {
	c := model.NewCounter()
	c.Add("X", 3)
	c.Add("Y", 1)
	c.Add("Z", 3)

	got := SortAscending(c.Entries())
	want := []model.Entry{{Key: "Y", Count: 1}, {Key: "X", Count: 3}, {Key: "Z", Count: 3}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortAscending = %v, want %v", got, want)
		}
	}
	// The counter itself keeps insertion order.
	if c.Entries()[0].Key != "X" {
		t.Error("SortAscending modified the counter's entries")
	}
}

func sampleCounters() *model.Counters {
	c := model.NewCounters()
	c.Frames = 4
	c.BySource.Add("BP-Linux8", 3)
	c.BySource.Add("host1", 1)
	c.ByDestination.Add("srv", 4)
	c.ByAddress.Add("10.0.0.1", 1)
	c.ByAddress.Add("10.0.0.2", 7)
	c.ByProtocol.Add(string(model.ProtoHTTP), 3)
	c.ByProtocol.Add(string(model.ProtoHTTPS), 1)
	c.ByFlag.Add(string(model.FlagSYN), 2)
	c.Pairs.Inc(model.Pair{Source: "BP-Linux8", Destination: "srv"})
	c.FirstSeen = time.Date(0, 1, 1, 11, 42, 1, 0, time.UTC)
	c.LastSeen = time.Date(0, 1, 1, 11, 42, 3, 500_000_000, time.UTC)
	c.TimedFrames = 4
	return c
}

func TestBuild_SectionOrder(t *testing.T) {
	anomalies := &model.AnomalyReport{Mean: 4, Suspects: []model.Entry{{Key: "10.0.0.2", Count: 7}}}
	doc := Build(sampleCounters(), anomalies, Options{
		Title:                     "Capture report",
		Watchlist:                 []string{"BP-Linux8", "absent-host"},
		ChartFile:                 "suspects.png",
		Threshold:                 100,
		OverThresholdSources:      []model.Entry{{Key: "BP-Linux8", Count: 3}},
		OverThresholdDestinations: []model.Entry{{Key: "srv", Count: 4}},
	})
	md := doc.Markdown

	sections := []string{
		"# Capture report",
		"## Frames: 4",
		"## Sources (ascending)",
		"## Destinations (ascending)",
		"## Suspicious activity",
		"## Protocols and statistics",
		"![Suspicious activity](suspects.png)",
		"## Sources over threshold (>= 100)",
		"## Destinations over threshold (>= 100)",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(md, s)
		if idx < 0 {
			t.Fatalf("section %q missing from report:\n%s", s, md)
		}
		if idx < last {
			t.Errorf("section %q is out of order", s)
		}
		last = idx
	}

	for _, want := range []string{
		"- **host1** : 1 requests\n- **BP-Linux8** : 3 requests",
		"- **BP-Linux8** : 3 requests (watch-list)",
		"- 10.0.0.2 : 7 occurrences",
		"- HTTP: 2\n",
		"- HTTPS: 1\n",
		"- Connection requests (SYN): 2",
		"- Duration: 2.5s",
		"## Sources over threshold (>= 100)\n\n- **BP-Linux8** : 3 requests\n",
		"## Destinations over threshold (>= 100)\n\n- **srv** : 4 visits\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report does not contain %q", want)
		}
	}
	if strings.Contains(md, "absent-host") {
		t.Error("watch-list host without traffic was reported")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	doc := Build(model.NewCounters(), nil, Options{Threshold: 50})
	md := doc.Markdown

	if !strings.Contains(md, "## Frames: 0") {
		t.Errorf("expected a zero frame count, got:\n%s", md)
	}
	if strings.Contains(md, "Suspicious activity") {
		t.Error("anomaly section rendered without detector data")
	}
	if strings.Contains(md, "NaN") || strings.Contains(md, "Inf") {
		t.Error("division by zero leaked into the report")
	}
	if !strings.Contains(md, "- Duration: unavailable") {
		t.Error("expected the capture duration to be reported as unavailable")
	}
	if strings.Contains(md, "![") {
		t.Error("chart referenced although none was rendered")
	}
}

func TestDocument_HTML(t *testing.T) {
	html := Document{Markdown: "# Title\n\n- **a** : 1\n"}.HTML()
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>a</strong>") {
		t.Errorf("unexpected HTML: %s", html)
	}
}

func TestSuspectShares(t *testing.T) {
	labels, values := SuspectShares(&model.AnomalyReport{Suspects: []model.Entry{
		{Key: "a", Count: 30},
		{Key: "b", Count: 10},
	}})
	if len(labels) != 2 || labels[0] != "a" || values[0] != 75 || values[1] != 25 {
		t.Errorf("SuspectShares = %v %v, want [a b] [75 25]", labels, values)
	}
	if l, v := SuspectShares(nil); l != nil || v != nil {
		t.Error("SuspectShares(nil) should return nothing")
	}
}

func TestPlotRenderer_Render(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suspects.png")
	r := NewPlotRenderer()
	if err := r.Render(path, "Suspicious activity", []string{"a", "b"}, []float64{75, 25}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("chart was not written: %v", err)
	}

	if err := r.Render(path, "empty", nil, nil); err == nil {
		t.Error("Render accepted an empty chart")
	}
}
