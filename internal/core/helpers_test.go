package core

import (
	"time"

	"github.com/mraspaud/kb-solaria/internal/transport"
)

// fakeTimer is a Timer whose firing is controlled by the test via
// fakeScheduler, instead of real wall-clock time.
type fakeTimer struct{ stopped bool }

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type schedulerCall struct {
	delay time.Duration
	fn    func()
	timer *fakeTimer
}

// fakeScheduler substitutes for the production time.AfterFunc Scheduler so
// debounce behavior (pending cursor hints, mark-read acks, hydration
// spacing) is deterministic in tests.
type fakeScheduler struct {
	calls []*schedulerCall
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{}
	s.calls = append(s.calls, &schedulerCall{delay: d, fn: f, timer: t})
	return t
}

// FireAll invokes every scheduled callback that hasn't been stopped, in
// scheduling order. Callbacks that schedule further callbacks (pending
// hint retries) are picked up too, since the slice is indexed live.
func (s *fakeScheduler) FireAll() {
	for i := 0; i < len(s.calls); i++ {
		c := s.calls[i]
		if !c.timer.stopped {
			c.fn()
		}
	}
}

// fakeSender records every outbound command instead of sending it over a
// real transport.
type fakeSender struct {
	sent []transport.Command
}

func (f *fakeSender) Send(cmd transport.Command) {
	f.sent = append(f.sent, cmd)
}
