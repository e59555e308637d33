package aggregator

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/engine/protocol"
	"DumpSpectra/internal/model"
	"testing"
)

func newAggregator(t *testing.T) *Aggregator {
	t.Helper()
	canon, err := NewCanonicalizer(config.Default().Aggregator.Aliases)
	if err != nil {
		t.Fatalf("NewCanonicalizer failed: %v", err)
	}
	return New(canon)
}

func TestCanon_FixedPoint(t *testing.T) {
	canon, err := NewCanonicalizer(config.Default().Aggregator.Aliases)
	if err != nil {
		t.Fatalf("NewCanonicalizer failed: %v", err)
	}
	hosts := []string{
		"BP-Linux8.ssh",
		"BP-Linux8",
		"par21s05-in-f14.1e100.net.https",
		"par.1e100",
		"190-0-175-100.gba.solunet.com.ar.50245",
		"host1.local.40000",
		"",
	}
	for _, h := range hosts {
		once := canon.Canon(h)
		if twice := canon.Canon(once); twice != once {
			t.Errorf("Canon(Canon(%q)) = %q, Canon(%q) = %q", h, twice, h, once)
		}
	}
	if got := canon.Canon("par21s05-in-f14.1e100.net.https"); got != "par.1e100" {
		t.Errorf("Canon(par...) = %q, want par.1e100", got)
	}
	if got := canon.Canon("host1.local.40000"); got != "host1.local.40000" {
		t.Errorf("Canon passed through %q as %q", "host1.local.40000", got)
	}
}

func TestNewCanonicalizer_RejectsUnstableAlias(t *testing.T) {
	aliases := []config.AliasDef{
		{Prefix: "ab", Canonical: "abc"},
		{Prefix: "x", Canonical: "ab-host"},
	}
	if _, err := NewCanonicalizer(aliases); err == nil {
		t.Error("expected an error for a canonical form captured by another alias")
	}
}

func TestAggregator_Ingest(t *testing.T) {
	agg := newAggregator(t)
	ex := protocol.NewExtractor(false)
	lines := []string{
		"11:42:01.000000 IP BP-Linux8.ssh > 192.168.190.130.50019: Flags [P.], length 36",
		"11:42:01.500000 IP BP-Linux8.ssh > 192.168.190.130.50019: Flags [.], ack 1",
		"11:42:02.000000 IP 192.168.190.130.50019 > BP-Linux8.ssh: Flags [.], ack 37",
		"11:42:03.000000 IP cli.5000 > web.https: Flags [S], HTTP https",
		"not a frame",
	}
	for i, l := range lines {
		agg.Ingest(ex.Extract(model.RawLine{Number: i + 1, Text: l}))
	}
	c := agg.Counters()

	if c.Frames != 5 {
		t.Errorf("Frames = %d, want 5", c.Frames)
	}
	if got := c.BySource.Count("BP-Linux8"); got != 2 {
		t.Errorf("BySource[BP-Linux8] = %d, want 2", got)
	}
	if got := c.ByDestination.Count("BP-Linux8"); got != 1 {
		t.Errorf("ByDestination[BP-Linux8] = %d, want 1", got)
	}
	pair := model.Pair{Source: "BP-Linux8", Destination: "192.168.190.130.50019"}
	if got := c.Pairs.Count(pair); got != 2 {
		t.Errorf("Pairs[%v] = %d, want 2", pair, got)
	}
	if got := c.Flag(model.FlagACKOnly); got != 2 {
		t.Errorf("ByFlag[ACK-only] = %d, want 2", got)
	}
	if got := c.Protocol(model.ProtoSSH); got != 3 {
		t.Errorf("ByProtocol[ssh] = %d, want 3", got)
	}
	if c.Protocol(model.ProtoHTTP) != 1 || c.Protocol(model.ProtoHTTPS) != 1 {
		t.Errorf("http/https = %d/%d, want 1/1", c.Protocol(model.ProtoHTTP), c.Protocol(model.ProtoHTTPS))
	}
	if c.MalformedTimestamps != 1 {
		t.Errorf("MalformedTimestamps = %d, want 1", c.MalformedTimestamps)
	}
	first, last, ok := c.CaptureWindow()
	if !ok || last.Sub(first).Seconds() != 2 {
		t.Errorf("CaptureWindow = %v..%v (%v), want a 2s window", first, last, ok)
	}
}

// Lines with "https" also contain "http", so the derived HTTP-only figure
// must equal the number of lines that mention http but not https.
func TestAggregator_HTTPOnlyMatchesDirectCount(t *testing.T) {
	lines := []string{
		"11:42:01 IP a.1 > b.http: Flags [S]",
		"11:42:02 IP a.2 > b.https: Flags [S]",
		"11:42:03 IP a.3 > b.https: Flags [P.]",
		"11:42:04 IP a.4 > b.http: Flags [P.]",
		"11:42:05 IP a.5 > b.http: Flags [F.]",
		"11:42:06 IP a.6 > b.ssh: Flags [S]",
	}
	agg := newAggregator(t)
	ex := protocol.NewExtractor(false)
	direct := 0
	for _, l := range lines {
		frame := ex.Extract(model.RawLine{Text: l})
		if frame.HasProtocol(model.ProtoHTTP) && !frame.HasProtocol(model.ProtoHTTPS) {
			direct++
		}
		agg.Ingest(frame)
	}
	c := agg.Counters()
	if c.HTTPOnly() != direct || direct != 3 {
		t.Errorf("HTTPOnly() = %d, direct count = %d, want 3", c.HTTPOnly(), direct)
	}
	if c.Protocol(model.ProtoHTTP) < c.Protocol(model.ProtoHTTPS) {
		t.Errorf("http (%d) < https (%d) on a fixture where every https line contains http",
			c.Protocol(model.ProtoHTTP), c.Protocol(model.ProtoHTTPS))
	}
}

func TestAggregator_EmptyFrame(t *testing.T) {
	agg := newAggregator(t)
	agg.Ingest(&model.Frame{})
	c := agg.Counters()
	if c.Frames != 1 {
		t.Errorf("Frames = %d, want 1", c.Frames)
	}
	if c.BySource.Len()+c.ByDestination.Len()+c.ByAddress.Len()+c.Pairs.Len() != 0 {
		t.Error("an empty frame must not create keyed counters")
	}
}

func TestAggregator_CaptureWindowOutOfOrder(t *testing.T) {
	agg := newAggregator(t)
	ex := protocol.NewExtractor(false)
	for _, l := range []string{
		"00:00:05.000000 IP a.1 > b.2: Flags [S]",
		"00:00:00.000000 IP a.1 > b.2: Flags [S]",
		"00:00:09.250000 IP a.1 > b.2: Flags [S]",
		"00:00:07.000000 IP a.1 > b.2: Flags [S]",
	} {
		agg.Ingest(ex.Extract(model.RawLine{Text: l}))
	}
	c := agg.Counters()
	if c.TimedFrames != 4 {
		t.Errorf("TimedFrames = %d, want 4", c.TimedFrames)
	}
	first, last, ok := c.CaptureWindow()
	if !ok {
		t.Fatal("CaptureWindow not available")
	}
	if got := first.Format("15:04:05.000000"); got != "00:00:00.000000" {
		t.Errorf("FirstSeen = %s, want 00:00:00.000000", got)
	}
	if got := last.Format("15:04:05.000000"); got != "00:00:09.250000" {
		t.Errorf("LastSeen = %s, want 00:00:09.250000", got)
	}
}

func TestAggregator_SingleTimedFrame(t *testing.T) {
	agg := newAggregator(t)
	ex := protocol.NewExtractor(false)
	agg.Ingest(ex.Extract(model.RawLine{Text: "garbage IP a.1 > b.2: Flags [S]"}))
	agg.Ingest(ex.Extract(model.RawLine{Text: "11:42:01.000000 IP a.1 > b.2: Flags [S]"}))
	c := agg.Counters()
	if c.TimedFrames != 1 || c.MalformedTimestamps != 1 {
		t.Errorf("TimedFrames = %d, MalformedTimestamps = %d, want 1/1", c.TimedFrames, c.MalformedTimestamps)
	}
	first, last, ok := c.CaptureWindow()
	if !ok || !first.Equal(last) {
		t.Errorf("CaptureWindow = %v..%v (%v), want a single instant", first, last, ok)
	}
}

func TestAggregator_NoTimedFrames(t *testing.T) {
	agg := newAggregator(t)
	agg.Ingest(&model.Frame{Source: "a"})
	if _, _, ok := agg.Counters().CaptureWindow(); ok {
		t.Error("CaptureWindow should be unavailable without a valid timestamp")
	}
}
