// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"io"
)

// Attempt records the probe outcome of one strategy.
type Attempt struct {
	Strategy string `json:"strategy" yaml:"strategy"`
	OK       bool   `json:"ok" yaml:"ok"`
}

// Resolve probes strategies in priority order with the canonical probe
// target and returns the first one that yields items. Strategies after the
// winner are never touched. It returns nil when every strategy fails.
func Resolve(ctx context.Context, strategies []Strategy, probeTarget string, w io.Writer) (Strategy, []Attempt) {
	var attempts []Attempt
	for i, s := range strategies {
		logf(w, "  [%d/%d] probing %s (%s) with %q\n", i+1, len(strategies), s.Name(), s.Kind(), probeTarget)
		ok := probe(ctx, s, probeTarget)
		attempts = append(attempts, Attempt{Strategy: s.Name(), OK: ok})
		if ok {
			logf(w, "  using %s\n", s.Name())
			return s, attempts
		}
		logf(w, "  warning: %s unavailable\n", s.Name())
	}
	return nil, attempts
}

func probe(ctx context.Context, s Strategy, target string) bool {
	if p, ok := s.(Prober); ok {
		return p.Probe(ctx, target)
	}
	return len(s.Fetch(ctx, target, probeLimit)) > 0
}
