// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

func targets(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%d", i+1)
	}
	return out
}

// probeOnly answers the probe target and nothing else.
func probeOnly(target string) []types.Item {
	if target == "probe" {
		return makeItems("probe", 1)
	}
	return nil
}

func TestTrackerProbeConsumesFailedEndpoints(t *testing.T) {
	ep := &stubEndpoints{respond: map[string]func(string) []types.Item{
		"b": always("b", 1),
		"c": always("c", 1),
	}}
	pacer, waits := recordingPacer()
	tr := NewTracker(ep, []string{"a", "b", "c"}, 3, pacer, nil)

	require.True(t, tr.Probe(context.Background(), "probe"))
	assert.Equal(t, StateActive, tr.State())
	assert.Equal(t, "b", tr.Endpoint())
	assert.Equal(t, []string{"c"}, tr.Remaining())
	assert.Equal(t, []time.Duration{2 * time.Second}, *waits)
}

func TestTrackerProbeAllDead(t *testing.T) {
	ep := &stubEndpoints{}
	tr := NewTracker(ep, []string{"a", "b"}, 3, nil, nil)

	assert.False(t, tr.Probe(context.Background(), "probe"))
	assert.Equal(t, StateExhausted, tr.State())
	assert.Nil(t, tr.Fetch(context.Background(), "t1", 5))
	assert.Equal(t, []string{"a:probe", "b:probe"}, ep.calls, "no fetch after exhaustion")
}

func TestTrackerSwitchesBeforeFourthTarget(t *testing.T) {
	ep := &stubEndpoints{respond: map[string]func(string) []types.Item{
		"a": probeOnly,
		"b": always("b", 2),
	}}
	tr := NewTracker(ep, []string{"a", "b"}, 3, nil, nil)
	ctx := context.Background()
	require.True(t, tr.Probe(ctx, "probe"))

	for i, target := range targets(3) {
		assert.Empty(t, tr.Fetch(ctx, target, 5))
		if i < 2 {
			assert.Equal(t, StateDegraded, tr.State())
			assert.Equal(t, i+1, tr.Failures())
		}
	}
	assert.Equal(t, "b", tr.Endpoint(), "switch happens on the third failure")
	assert.Equal(t, 1, tr.Switches())
	assert.Equal(t, 0, tr.Failures())

	got := tr.Fetch(ctx, "t4", 5)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"a:probe", "a:t1", "a:t2", "a:t3", "b:probe", "b:t4"}, ep.calls)
}

func TestTrackerSuccessResetsFailures(t *testing.T) {
	ep := &stubEndpoints{respond: map[string]func(string) []types.Item{
		"a": func(target string) []types.Item {
			if target == "bad" {
				return nil
			}
			return makeItems("a", 1)
		},
	}}
	tr := NewTracker(ep, []string{"a"}, 3, nil, nil)
	ctx := context.Background()
	require.True(t, tr.Probe(ctx, "probe"))

	for _, target := range []string{"bad", "bad", "good", "bad", "bad"} {
		tr.Fetch(ctx, target, 5)
	}
	assert.Equal(t, StateDegraded, tr.State())
	assert.Equal(t, 2, tr.Failures())
	assert.Equal(t, "a", tr.Endpoint())
}

func TestTrackerExhaustsWhenNoAlternateWorks(t *testing.T) {
	ep := &stubEndpoints{respond: map[string]func(string) []types.Item{
		"a": probeOnly,
	}}
	tr := NewTracker(ep, []string{"a", "b"}, 3, nil, nil)
	ctx := context.Background()
	require.True(t, tr.Probe(ctx, "probe"))

	for _, target := range targets(3) {
		tr.Fetch(ctx, target, 5)
	}
	assert.True(t, tr.Exhausted())
	assert.Equal(t, 0, tr.Switches())
	assert.Empty(t, tr.Remaining())
}

func TestTrackerSwitchedEndpointNotRetried(t *testing.T) {
	// b answers the probe only, so after switching to it the tracker must
	// move on to c and never come back to a or b.
	ep := &stubEndpoints{respond: map[string]func(string) []types.Item{
		"a": probeOnly,
		"b": probeOnly,
		"c": always("c", 1),
	}}
	tr := NewTracker(ep, []string{"a", "b", "c"}, 3, nil, nil)
	ctx := context.Background()
	require.True(t, tr.Probe(ctx, "probe"))

	for _, target := range targets(6) {
		tr.Fetch(ctx, target, 5)
	}
	assert.Equal(t, "c", tr.Endpoint())
	assert.Equal(t, 2, tr.Switches())
	assert.Empty(t, tr.Remaining())
}

func TestTrackerDefaultThreshold(t *testing.T) {
	tr := NewTracker(&stubEndpoints{}, nil, 0, nil, nil)
	assert.Equal(t, DefaultFailThreshold, tr.threshold)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateProbing, "probing"},
		{StateActive, "active"},
		{StateDegraded, "degraded"},
		{StateSwitching, "switching"},
		{StateExhausted, "exhausted"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
