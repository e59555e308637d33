package protocol

import (
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gopacket/layers"
)

var (
	serviceOnce  sync.Once
	servicePorts map[string]int
)

// loadServiceNames builds the reverse of gopacket's port name tables so that
// "host.https" and "host.443" resolve to the same label.
func loadServiceNames() {
	servicePorts = make(map[string]int)
	for p := 0; p <= 0xffff; p++ {
		if name, ok := portName(layers.TCPPort(p).String()); ok {
			if _, dup := servicePorts[name]; !dup {
				servicePorts[name] = p
			}
		}
		if name, ok := portName(layers.UDPPort(p).String()); ok {
			if _, dup := servicePorts[name]; !dup {
				servicePorts[name] = p
			}
		}
	}
}

// portName extracts "http" from gopacket's "80(http)" form.
func portName(s string) (string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[open+1 : len(s)-1], true
}

// PortLabel returns gopacket's label for a port, preferring the TCP table.
func PortLabel(port int) string {
	if label := layers.TCPPort(port).String(); strings.Contains(label, "(") {
		return label
	}
	return layers.UDPPort(port).String()
}

// ServiceOf resolves the port suffix of a destination token ("host.80",
// "host.domain") to a port label. It returns "" when the token carries no port.
func ServiceOf(destination string) string {
	if addr, err := netip.ParseAddr(destination); err == nil && addr.Is4() {
		return ""
	}
	dot := strings.LastIndexByte(destination, '.')
	if dot < 0 || dot == len(destination)-1 {
		return ""
	}
	suffix := destination[dot+1:]

	if port, err := strconv.Atoi(suffix); err == nil {
		if port < 0 || port > 0xffff {
			return ""
		}
		return PortLabel(port)
	}

	serviceOnce.Do(loadServiceNames)
	if port, ok := servicePorts[suffix]; ok {
		return PortLabel(port)
	}
	return ""
}
