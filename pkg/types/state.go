// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunState is the cross-cycle counter that drives the duty cycle of the
// heavy source category. It is persisted independently of the Store and
// survives Store resets.
type RunState struct {
	RunCount     int        `json:"run_count" yaml:"run_count"`
	LastRunAt    *time.Time `json:"last_run" yaml:"last_run"`
	LastHeavyRun *time.Time `json:"last_heavy_run" yaml:"last_heavy_run"`
}

// HeavyDue reports whether the heavy category runs in the current cycle.
// It runs on the first cycle and every everyN-th cycle after that.
func (s RunState) HeavyDue(everyN int) bool {
	if everyN <= 1 {
		return true
	}
	return s.RunCount%everyN == 0
}

// CyclesUntilHeavy returns how many cycles run before the next one that
// includes the heavy category. Zero means the next cycle includes it.
func (s RunState) CyclesUntilHeavy(everyN int) int {
	if everyN <= 1 {
		return 0
	}
	return (everyN - s.RunCount%everyN) % everyN
}

// Advance records a completed cycle.
func (s *RunState) Advance(now time.Time, ranHeavy bool) {
	s.RunCount++
	t := now.UTC()
	s.LastRunAt = &t
	if ranHeavy {
		h := t
		s.LastHeavyRun = &h
	}
}
