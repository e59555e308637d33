package protocol

import (
	"DumpSpectra/internal/model"
	"net/netip"
	"regexp"
	"strings"
	"time"
)

var (
	// pairPattern captures "IP <src> > <dst>"; the destination stops before the colon.
	pairPattern = regexp.MustCompile(`IP\s+([^\s>]+)\s+>\s+([^\s:]+)`)
	// ipTokenPattern is the first address pass: every token following "IP ".
	ipTokenPattern = regexp.MustCompile(`IP (\S+)`)
	// quadPattern is the second address pass: dotted-quad literals anywhere in the line.
	quadPattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	portPattern = regexp.MustCompile(`\.\d+$`)
)

// timestampLayout matches tcpdump's default "HH:MM:SS.ffffff" prefix; the
// fractional part is accepted by time.Parse without being in the layout.
const timestampLayout = "15:04:05"

type protocolRule struct {
	needle   string
	protocol model.Protocol
}

type flagRule struct {
	needle string
	flag   model.TCPFlag
}

// Each rule is an independent substring test; a line may match any number of them.
var protocolRules = []protocolRule{
	{".domain", model.ProtoDNS},
	{"ssh", model.ProtoSSH},
	{"https", model.ProtoHTTPS},
	{"http", model.ProtoHTTP},
	{"ICMP echo request", model.ProtoICMPRequest},
	{"ICMP echo reply", model.ProtoICMPReply},
}

var flagRules = []flagRule{
	{"Flags [S]", model.FlagSYN},
	{"Flags [S.]", model.FlagSYNACK},
	{"Flags [F.]", model.FlagFIN},
	{"Flags [P.]", model.FlagPUSH},
	{"Flags [.]", model.FlagACKOnly},
}

// Extractor turns capture lines into frames.
type Extractor struct {
	dedupAddresses bool
	stripBareIPv4  bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBareIPv4Strip makes the address passes strip the last octet of a bare
// dotted quad as if it were a port.
func WithBareIPv4Strip() Option {
	return func(e *Extractor) { e.stripBareIPv4 = true }
}

// NewExtractor creates an extractor. With dedupAddresses set, a dotted quad
// found at the same offset as an "IP " token with the same cleaned value is
// counted once instead of twice.
func NewExtractor(dedupAddresses bool, opts ...Option) *Extractor {
	e := &Extractor{dedupAddresses: dedupAddresses}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses one line. It never fails: fields that do not match are left empty.
func (e *Extractor) Extract(line model.RawLine) *model.Frame {
	text := line.Text
	frame := &model.Frame{Line: line.Number}

	if m := pairPattern.FindStringSubmatch(text); m != nil {
		frame.Source = m[1]
		frame.Destination = m[2]
		frame.Service = ServiceOf(m[2])
	}

	frame.Addresses = e.addresses(text)

	for _, rule := range protocolRules {
		if strings.Contains(text, rule.needle) {
			frame.Protocols = append(frame.Protocols, rule.protocol)
		}
	}
	for _, rule := range flagRules {
		if strings.Contains(text, rule.needle) {
			frame.Flags = append(frame.Flags, rule.flag)
		}
	}

	frame.Timestamp, frame.TimeValid = ParseTimestamp(text)
	return frame
}

// addresses runs both address passes over the line.
func (e *Extractor) addresses(text string) []string {
	var out []string
	seen := make(map[int]string)

	for _, idx := range ipTokenPattern.FindAllStringSubmatchIndex(text, -1) {
		addr := e.stripPort(text[idx[2]:idx[3]])
		seen[idx[2]] = addr
		out = append(out, addr)
	}
	for _, idx := range quadPattern.FindAllStringIndex(text, -1) {
		addr := e.stripPort(text[idx[0]:idx[1]])
		if e.dedupAddresses {
			if prev, ok := seen[idx[0]]; ok && prev == addr {
				continue
			}
		}
		out = append(out, addr)
	}
	return out
}

func (e *Extractor) stripPort(token string) string {
	if e.stripBareIPv4 {
		return portPattern.ReplaceAllString(token, "")
	}
	return StripPort(token)
}

// StripPort removes a trailing ".<digits>" port suffix. A bare IPv4 literal
// has no port and is returned unchanged.
func StripPort(token string) string {
	if addr, err := netip.ParseAddr(token); err == nil && addr.Is4() {
		return token
	}
	return portPattern.ReplaceAllString(token, "")
}

// ParseTimestamp reads the leading time-of-day field. ok is false when the
// field is missing or malformed.
func ParseTimestamp(text string) (time.Time, bool) {
	field, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	if field == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(timestampLayout, field)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
