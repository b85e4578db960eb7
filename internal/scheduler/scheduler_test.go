// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the cron goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{"named zone", "Asia/Seoul", false},
		{"utc", "UTC", false},
		{"empty is local", "", false},
		{"unknown zone", "Mars/Olympus", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.timezone, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s.Location())
		})
	}
}

func TestAdd(t *testing.T) {
	s, err := New("UTC", nil)
	require.NoError(t, err)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("crawl", "0 * * * *", noop))
	require.NoError(t, s.Add("digest", "@daily", noop))

	assert.Error(t, s.Add("crawl", "30 * * * *", noop), "duplicate name")
	assert.Error(t, s.Add("bad", "61 * * * *", noop), "invalid minute")
	assert.Error(t, s.Add("seconds", "0 0 * * * *", noop), "six fields")
	assert.Error(t, s.Add("nil", "@hourly", nil))
	assert.True(t, s.Next("unknown").IsZero())
}

func TestRunExecutesJobsAndStops(t *testing.T) {
	log := &syncBuffer{}
	s, err := New("UTC", log)
	require.NoError(t, err)

	ran := make(chan struct{}, 10)
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		ran <- struct{}{}
		return errors.New("source down")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Contains(t, log.String(), "scheduled tick")
	assert.Contains(t, log.String(), "tick: started")
	assert.Contains(t, log.String(), "tick: failed: source down")
}

func TestRunJobSerializes(t *testing.T) {
	s, err := New("UTC", nil)
	require.NoError(t, err)

	var mu sync.Mutex
	active, maxActive := 0, 0
	job := func(context.Context) error {
		mu.Lock()
		active++
		maxActive = max(maxActive, active)
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	for _, name := range []string{"crawl", "digest", "crawl"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runJob(name, job)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

func TestRunJobSkipsAfterCancel(t *testing.T) {
	s, err := New("UTC", nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ctx = ctx

	called := false
	s.runJob("crawl", func(context.Context) error { called = true; return nil })
	assert.False(t, called)
}
