package aggregator

import (
	"DumpSpectra/internal/config"
	"fmt"
	"strings"
)

// Canonicalizer folds host tokens into their alias family.
type Canonicalizer struct {
	aliases []config.AliasDef
}

// NewCanonicalizer creates a canonicalizer from an ordered alias list; the first
// matching prefix wins. Every canonical form must map onto itself, otherwise
// counting the same host twice could split it across keys.
func NewCanonicalizer(aliases []config.AliasDef) (*Canonicalizer, error) {
	c := &Canonicalizer{aliases: aliases}
	for _, a := range aliases {
		if got := c.Canon(a.Canonical); got != a.Canonical {
			return nil, fmt.Errorf("alias %q: canonical form %q folds into %q", a.Prefix, a.Canonical, got)
		}
	}
	return c, nil
}

// Canon returns the canonical form of host. Hosts without an alias pass through.
func (c *Canonicalizer) Canon(host string) string {
	for _, a := range c.aliases {
		if strings.HasPrefix(host, a.Prefix) {
			return a.Canonical
		}
	}
	return host
}
