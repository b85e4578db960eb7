// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"io"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// DefaultFailThreshold is the number of consecutive empty fetches that
// triggers an endpoint switch.
const DefaultFailThreshold = 3

// State is the circuit-breaker state of a Tracker.
type State int

const (
	StateProbing State = iota
	StateActive
	StateDegraded
	StateSwitching
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateActive:
		return "active"
	case StateDegraded:
		return "degraded"
	case StateSwitching:
		return "switching"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// EndpointFetcher fetches one target from one named endpoint.
type EndpointFetcher interface {
	FetchFrom(ctx context.Context, endpoint, target string, limit int) []types.Item
}

// Tracker remembers a working endpoint among interchangeable ones and
// fails over when it degrades. A Tracker lives for one cycle.
type Tracker struct {
	fetcher   EndpointFetcher
	endpoints []string
	threshold int
	pacer     *Pacer
	log       io.Writer

	state     State
	active    string
	probe     string
	remaining []string
	failures  int
	switches  int
}

// NewTracker returns a tracker over endpoints in priority order. A
// threshold below 1 uses DefaultFailThreshold.
func NewTracker(f EndpointFetcher, endpoints []string, threshold int, pacer *Pacer, w io.Writer) *Tracker {
	if threshold < 1 {
		threshold = DefaultFailThreshold
	}
	return &Tracker{
		fetcher:   f,
		endpoints: append([]string(nil), endpoints...),
		threshold: threshold,
		pacer:     pacer,
		log:       w,
	}
}

// Probe restarts the tracker and selects the first endpoint that returns
// items for target. Endpoints that fail the probe are not retried later in
// the cycle. It returns false and moves to Exhausted when none responds.
func (t *Tracker) Probe(ctx context.Context, target string) bool {
	t.state = StateProbing
	t.active = ""
	t.probe = target
	t.failures = 0
	t.switches = 0
	t.remaining = append([]string(nil), t.endpoints...)
	return t.selectNext(ctx)
}

// Fetch fetches target from the active endpoint. Empty results count
// toward the failure threshold; reaching it switches endpoints before the
// next call. Once Exhausted, Fetch returns nil without any request.
func (t *Tracker) Fetch(ctx context.Context, target string, limit int) []types.Item {
	if t.state == StateExhausted || t.active == "" {
		return nil
	}
	items := t.fetcher.FetchFrom(ctx, t.active, target, limit)
	if len(items) > 0 {
		t.failures = 0
		t.state = StateActive
		return items
	}

	t.failures++
	t.state = StateDegraded
	logf(t.log, "  warning: %s returned nothing for %s (%d/%d)\n", t.active, target, t.failures, t.threshold)
	if t.failures < t.threshold {
		return nil
	}

	t.state = StateSwitching
	logf(t.log, "  %d consecutive failures on %s, switching endpoint\n", t.failures, t.active)
	prev := t.active
	if t.selectNext(ctx) {
		t.switches++
		logf(t.log, "  switched %s -> %s\n", prev, t.active)
	}
	return nil
}

// selectNext probes remaining alternates in order, consuming each one.
func (t *Tracker) selectNext(ctx context.Context) bool {
	first := true
	for len(t.remaining) > 0 {
		if ctx.Err() != nil {
			break
		}
		if !first {
			if err := t.pacer.BetweenEndpoints(ctx); err != nil {
				break
			}
		}
		first = false

		ep := t.remaining[0]
		t.remaining = t.remaining[1:]
		if len(t.fetcher.FetchFrom(ctx, ep, t.probe, probeLimit)) > 0 {
			t.active = ep
			t.failures = 0
			t.state = StateActive
			return true
		}
		logf(t.log, "  warning: endpoint %s failed probe\n", ep)
	}
	t.active = ""
	t.state = StateExhausted
	logf(t.log, "  failed: no working endpoint left\n")
	return false
}

func (t *Tracker) State() State        { return t.state }
func (t *Tracker) Endpoint() string    { return t.active }
func (t *Tracker) Failures() int       { return t.failures }
func (t *Tracker) Switches() int       { return t.switches }
func (t *Tracker) Exhausted() bool     { return t.state == StateExhausted }
func (t *Tracker) Remaining() []string { return append([]string(nil), t.remaining...) }

// MultiEndpoint adapts an EndpointFetcher into a Strategy whose probe and
// fetches go through a Tracker.
type MultiEndpoint struct {
	name    string
	kind    Kind
	tracker *Tracker
}

// NewMultiEndpoint wraps f as a named strategy over endpoints.
func NewMultiEndpoint(name string, kind Kind, f EndpointFetcher, endpoints []string, threshold int, pacer *Pacer, w io.Writer) *MultiEndpoint {
	return &MultiEndpoint{
		name:    name,
		kind:    kind,
		tracker: NewTracker(f, endpoints, threshold, pacer, w),
	}
}

func (m *MultiEndpoint) Name() string { return m.name }
func (m *MultiEndpoint) Kind() Kind   { return m.kind }

// Tracker exposes the circuit-breaker state.
func (m *MultiEndpoint) Tracker() *Tracker { return m.tracker }

// Probe selects a working endpoint for this cycle.
func (m *MultiEndpoint) Probe(ctx context.Context, target string) bool {
	return m.tracker.Probe(ctx, target)
}

// Fetch fetches through the tracker. Calling Fetch before Probe probes
// with target itself.
func (m *MultiEndpoint) Fetch(ctx context.Context, target string, limit int) []types.Item {
	if m.tracker.State() == StateProbing && m.tracker.Endpoint() == "" {
		if !m.tracker.Probe(ctx, target) {
			return nil
		}
	}
	return m.tracker.Fetch(ctx, target, limit)
}

func (m *MultiEndpoint) Exhausted() bool { return m.tracker.Exhausted() }
func (m *MultiEndpoint) Switches() int   { return m.tracker.Switches() }
