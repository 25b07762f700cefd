package core

import "time"

// Timer is the minimal handle returned by Scheduler.AfterFunc.
type Timer interface {
	// Stop cancels the timer. Idempotent (spec.md §5 "Timers are
	// idempotent on cancellation").
	Stop() bool
}

// Scheduler abstracts the core's timers: the two debounce timers of
// spec.md §5 (the 300ms pending-cursor-hint retry and the mark-read
// scheduler) and the hydration spacing delays. Tests
// substitute a fake scheduler so debounce behavior is deterministic
// without sleeping real wall-clock time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realScheduler is the production Scheduler, backed by time.AfterFunc.
type realScheduler struct{}

// NewRealScheduler returns the production time.AfterFunc-backed Scheduler.
func NewRealScheduler() Scheduler { return realScheduler{} }

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
