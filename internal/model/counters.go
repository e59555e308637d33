package model

import "time"

// PairEntry is one source→destination pair with its frequency.
type PairEntry struct {
	Pair  Pair
	Count int
}

// PairCounter counts canonical host pairs in first-seen order.
type PairCounter struct {
	index   map[Pair]int
	entries []PairEntry
}

// Inc adds one to the pair.
func (c *PairCounter) Inc(p Pair) {
	if c.index == nil {
		c.index = make(map[Pair]int)
	}
	if i, ok := c.index[p]; ok {
		c.entries[i].Count++
		return
	}
	c.index[p] = len(c.entries)
	c.entries = append(c.entries, PairEntry{Pair: p, Count: 1})
}

// Count returns the frequency of the pair.
func (c *PairCounter) Count(p Pair) int {
	if i, ok := c.index[p]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct pairs.
func (c *PairCounter) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the pairs in insertion order.
func (c *PairCounter) Entries() []PairEntry {
	out := make([]PairEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Counters is the accumulation state of one analysis run.
type Counters struct {
	Frames        int
	BySource      *Counter
	ByDestination *Counter
	ByAddress     *Counter
	ByProtocol    *Counter
	ByFlag        *Counter
	ByService     *Counter
	Pairs         *PairCounter

	// FirstSeen and LastSeen are only meaningful when TimedFrames > 0.
	// Times parsed from a bare time of day fall in year 0, before the zero time.Time.
	FirstSeen           time.Time
	LastSeen            time.Time
	TimedFrames         int
	MalformedTimestamps int
}

// NewCounters creates an empty set of counters.
func NewCounters() *Counters {
	return &Counters{
		BySource:      NewCounter(),
		ByDestination: NewCounter(),
		ByAddress:     NewCounter(),
		ByProtocol:    NewCounter(),
		ByFlag:        NewCounter(),
		ByService:     NewCounter(),
		Pairs:         &PairCounter{},
	}
}

// Protocol returns the number of frames carrying p.
func (c *Counters) Protocol(p Protocol) int {
	return c.ByProtocol.Count(string(p))
}

// Flag returns the number of frames carrying flag.
func (c *Counters) Flag(flag TCPFlag) int {
	return c.ByFlag.Count(string(flag))
}

// HTTPOnly is the http count minus the https count. Every https line also
// contains "http", so on real captures this is the number of plain HTTP frames.
func (c *Counters) HTTPOnly() int {
	return c.Protocol(ProtoHTTP) - c.Protocol(ProtoHTTPS)
}

// ICMPTotal is the sum of echo requests and replies.
func (c *Counters) ICMPTotal() int {
	return c.Protocol(ProtoICMPRequest) + c.Protocol(ProtoICMPReply)
}

// CaptureWindow returns the span between the first and last valid timestamps.
// ok is false when no frame carried a usable timestamp.
func (c *Counters) CaptureWindow() (first, last time.Time, ok bool) {
	if c.TimedFrames == 0 {
		return time.Time{}, time.Time{}, false
	}
	return c.FirstSeen, c.LastSeen, true
}

// AnomalyReport lists the addresses whose tally strictly exceeds the mean.
type AnomalyReport struct {
	Mean     float64
	Suspects []Entry
}

// Result is everything a run produced, handed to every writer.
type Result struct {
	Source    string
	Mode      string
	Generated time.Time
	Filtered  []string
	Pairs     []Pair
	Hosts     []HostInfo
	Counters  *Counters
	// Anomalies is nil when the detector had no data.
	Anomalies *AnomalyReport
	// OverThresholdSources and OverThresholdDestinations list the hosts whose
	// count reached the configured threshold.
	OverThresholdSources      []Entry
	OverThresholdDestinations []Entry
	// InputErr records a capture that could not be read; the run still completes.
	InputErr error
}
