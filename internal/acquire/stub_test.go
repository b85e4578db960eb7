// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// stubStrategy returns canned items per target and records every call.
type stubStrategy struct {
	name     string
	kind     Kind
	fetch    func(target string) []types.Item
	comments map[string][]types.Comment
	calls    []string
}

func (s *stubStrategy) Name() string { return s.name }
func (s *stubStrategy) Kind() Kind   { return s.kind }

func (s *stubStrategy) Fetch(_ context.Context, target string, _ int) []types.Item {
	s.calls = append(s.calls, target)
	if s.fetch == nil {
		return nil
	}
	return s.fetch(target)
}

type commentStub struct {
	*stubStrategy
}

func (c commentStub) Comments(_ context.Context, item types.Item) []types.Comment {
	c.calls = append(c.calls, "comments:"+item.ID)
	return c.comments[item.ID]
}

func always(prefix string, n int) func(string) []types.Item {
	return func(target string) []types.Item {
		return makeItems(prefix+"_"+target, n)
	}
}

func never(string) []types.Item { return nil }

func makeItems(prefix string, n int) []types.Item {
	items := make([]types.Item, n)
	for i := range items {
		items[i] = types.Item{ID: fmt.Sprintf("%s_%d", prefix, i), Title: prefix, Score: i}
	}
	return items
}

// stubEndpoints maps endpoint to a per-target responder and logs calls as
// "endpoint:target".
type stubEndpoints struct {
	respond map[string]func(target string) []types.Item
	calls   []string
}

func (s *stubEndpoints) FetchFrom(_ context.Context, endpoint, target string, _ int) []types.Item {
	s.calls = append(s.calls, endpoint+":"+target)
	f, ok := s.respond[endpoint]
	if !ok {
		return nil
	}
	return f(target)
}

// recordingPacer returns a pacer that records requested waits instead of
// sleeping.
func recordingPacer() (*Pacer, *[]time.Duration) {
	var waits []time.Duration
	p := &Pacer{
		TargetDelay:   3 * time.Second,
		EndpointDelay: 2 * time.Second,
		BatchDelay:    time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	return p, &waits
}
