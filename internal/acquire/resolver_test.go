// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

func TestResolveStopsAtFirstWorkingStrategy(t *testing.T) {
	s1 := &stubStrategy{name: "s1", kind: KindScrape, fetch: never}
	s2 := &stubStrategy{name: "s2", kind: KindAPI, fetch: always("s2", 2)}
	s3 := &stubStrategy{name: "s3", kind: KindFeed, fetch: always("s3", 2)}

	var log bytes.Buffer
	active, attempts := Resolve(context.Background(), []Strategy{s1, s2, s3}, "probe", &log)

	require.NotNil(t, active)
	assert.Equal(t, "s2", active.Name())
	assert.Equal(t, []Attempt{{Strategy: "s1"}, {Strategy: "s2", OK: true}}, attempts)
	assert.Equal(t, []string{"probe"}, s1.calls)
	assert.Equal(t, []string{"probe"}, s2.calls)
	assert.Empty(t, s3.calls)
	assert.Contains(t, log.String(), "warning: s1 unavailable")
}

func TestResolveAllFail(t *testing.T) {
	s1 := &stubStrategy{name: "s1", fetch: never}
	s2 := &stubStrategy{name: "s2", fetch: never}

	active, attempts := Resolve(context.Background(), []Strategy{s1, s2}, "probe", nil)
	assert.Nil(t, active)
	assert.Len(t, attempts, 2)
}

func TestResolveUsesProber(t *testing.T) {
	ep := &stubEndpoints{respond: map[string]func(string) []types.Item{
		"b": always("b", 1),
	}}
	multi := NewMultiEndpoint("mirror", KindScrape, ep, []string{"a", "b"}, 3, nil, nil)

	active, _ := Resolve(context.Background(), []Strategy{multi}, "probe", nil)
	require.NotNil(t, active)
	assert.Equal(t, "b", multi.Tracker().Endpoint())
	assert.Equal(t, []string{"a:probe", "b:probe"}, ep.calls)
}
