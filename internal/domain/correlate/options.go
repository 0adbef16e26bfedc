package correlate

import (
	"fmt"
	"strings"
)

// Option configures a Correlator.
type Option func(*Correlator)

// WithReusePolicy sets how repeated matches of one team are handled.
func WithReusePolicy(p ReusePolicy) Option {
	return func(c *Correlator) {
		c.reuse = p
	}
}

// WithMatchers replaces the matcher tiers. An empty list is ignored.
func WithMatchers(m ...Matcher) Option {
	return func(c *Correlator) {
		if len(m) > 0 {
			c.matchers = m
		}
	}
}

// ParseReusePolicy maps "allow" or "reject" to a ReusePolicy. Empty means allow.
func ParseReusePolicy(s string) (ReusePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return ReuseAllow, nil
	case "reject":
		return ReuseReject, nil
	default:
		return ReuseAllow, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
