// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scheduler runs the crawl and digest jobs on cron schedules for
// the serve command. Jobs never overlap: a job that fires while another
// is running waits for it, and a job that fires while its own previous
// run is still going is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

// Scheduler owns a cron instance and the jobs registered on it.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	log      io.Writer

	// mu serializes every job so crawl and digest never touch the store
	// at the same time.
	mu sync.Mutex

	// ctx is the context handed to jobs; set by Run.
	ctxMu sync.Mutex
	ctx   context.Context

	entries map[string]cron.EntryID
}

// New creates a scheduler evaluating schedules in timezone. An empty
// timezone means local time.
func New(timezone string, w io.Writer) (*Scheduler, error) {
	if w == nil {
		w = io.Discard
	}
	loc := time.Local
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone: %w", err)
		}
	}
	logger := cron.PrintfLogger(log.New(w, "cron: ", 0))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		location: loc,
		log:      w,
		ctx:      context.Background(),
		entries:  map[string]cron.EntryID{},
	}, nil
}

// Location returns the timezone schedules are evaluated in.
func (s *Scheduler) Location() *time.Location { return s.location }

// Add registers run under name with a standard five-field cron spec or a
// descriptor such as @hourly.
func (s *Scheduler) Add(name, spec string, run JobFunc) error {
	if run == nil {
		return errors.New("job must not be nil")
	}
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("job %s already scheduled", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.runJob(name, run) })
	if err != nil {
		return fmt.Errorf("scheduling %s %q: %w", name, spec, err)
	}
	s.entries[name] = id
	return nil
}

// Next returns the next activation of the named job, or the zero time if
// the job is unknown or the scheduler is not running.
func (s *Scheduler) Next(name string) time.Time {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Run starts the scheduler and blocks until ctx is done. It then stops
// scheduling and waits for a running job to finish; the job sees ctx
// cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctxMu.Lock()
	s.ctx = ctx
	s.ctxMu.Unlock()

	s.cron.Start()
	for name := range s.entries {
		fmt.Fprintf(s.log, "scheduled %s, next run %s\n", name, s.Next(name).Format(time.RFC3339))
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) runJob(name string, run JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctxMu.Lock()
	ctx := s.ctx
	s.ctxMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	fmt.Fprintf(s.log, "%s: started\n", name)
	if err := run(ctx); err != nil {
		fmt.Fprintf(s.log, "%s: failed: %v\n", name, err)
		return
	}
	fmt.Fprintf(s.log, "%s: done in %s\n", name, time.Since(start).Round(time.Second))
}
