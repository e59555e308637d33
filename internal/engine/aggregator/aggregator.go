package aggregator

import (
	"DumpSpectra/internal/model"
)

// Aggregator keeps the running counters of one analysis run. Frames must be
// ingested one at a time, in capture order.
type Aggregator struct {
	canon    *Canonicalizer
	counters *model.Counters
}

// New creates an aggregator with empty counters.
func New(canon *Canonicalizer) *Aggregator {
	return &Aggregator{canon: canon, counters: model.NewCounters()}
}

// Ingest adds one frame to the counters. Hosts are canonicalized here, so
// every key in BySource, ByDestination and Pairs is already in canonical form.
func (a *Aggregator) Ingest(frame *model.Frame) {
	c := a.counters
	c.Frames++

	var src, dst string
	if frame.Source != "" {
		src = a.canon.Canon(frame.Source)
		c.BySource.Inc(src)
	}
	if frame.Destination != "" {
		dst = a.canon.Canon(frame.Destination)
		c.ByDestination.Inc(dst)
	}
	if frame.HasPair() {
		c.Pairs.Inc(model.Pair{Source: src, Destination: dst})
	}

	for _, addr := range frame.Addresses {
		c.ByAddress.Inc(addr)
	}
	for _, p := range frame.Protocols {
		c.ByProtocol.Inc(string(p))
	}
	for _, f := range frame.Flags {
		c.ByFlag.Inc(string(f))
	}
	if frame.Service != "" {
		c.ByService.Inc(frame.Service)
	}

	if !frame.TimeValid {
		c.MalformedTimestamps++
		return
	}
	if c.TimedFrames == 0 || frame.Timestamp.Before(c.FirstSeen) {
		c.FirstSeen = frame.Timestamp
	}
	if c.TimedFrames == 0 || frame.Timestamp.After(c.LastSeen) {
		c.LastSeen = frame.Timestamp
	}
	c.TimedFrames++
}

// Counters returns the counters accumulated so far.
func (a *Aggregator) Counters() *model.Counters {
	return a.counters
}
