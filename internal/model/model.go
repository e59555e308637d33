package model

import "time"

// RawLine is a single line of capture text and its 1-based position in the file.
type RawLine struct {
	Number int
	Text   string
}

// Protocol is a traffic-type fact found in a line.
type Protocol string

const (
	ProtoDNS         Protocol = "dns"
	ProtoSSH         Protocol = "ssh"
	ProtoHTTPS       Protocol = "https"
	ProtoHTTP        Protocol = "http"
	ProtoICMPRequest Protocol = "icmp-request"
	ProtoICMPReply   Protocol = "icmp-reply"
)

// TCPFlag is a fact derived from a "Flags [..]" annotation.
type TCPFlag string

const (
	FlagSYN     TCPFlag = "SYN"
	FlagSYNACK  TCPFlag = "SYN-ACK"
	FlagFIN     TCPFlag = "FIN"
	FlagPUSH    TCPFlag = "PUSH"
	FlagACKOnly TCPFlag = "ACK-only"
)

// Frame holds the fields extracted from one capture line.
// Empty Source and Destination mean the "IP <src> > <dst>:" pattern did not match.
// A frame without protocols or flags is still valid and only feeds the address tally.
type Frame struct {
	Line        int
	Source      string
	Destination string
	// Service is the canonical label of the destination port, empty when unknown.
	Service   string
	Protocols []Protocol
	Flags     []TCPFlag
	// Addresses keeps every token of both address passes, in pass order.
	Addresses []string
	Timestamp time.Time
	// TimeValid is false when the leading timestamp was missing or malformed.
	TimeValid bool
}

// HasPair reports whether both ends of the frame were extracted.
func (f *Frame) HasPair() bool {
	return f.Source != "" && f.Destination != ""
}

// HasProtocol reports whether the frame carries the given protocol marker.
func (f *Frame) HasProtocol(p Protocol) bool {
	for _, got := range f.Protocols {
		if got == p {
			return true
		}
	}
	return false
}

// HasFlag reports whether the frame carries the given TCP flag.
func (f *Frame) HasFlag(flag TCPFlag) bool {
	for _, got := range f.Flags {
		if got == flag {
			return true
		}
	}
	return false
}

// Pair is one extracted source/destination row, as written to pairs.csv.
type Pair struct {
	Source      string
	Destination string
}

// HostInfo is one row of the alternate extraction mode. Empty fields were not found.
type HostInfo struct {
	MachineName string
	IPAddress   string
	Website     string
}

// Run modes recorded on a Result.
const (
	ModeAnalyze = "analyze"
	ModeExtract = "extract"
)
