package testutil

import (
	"sync"
	"time"

	"tabtime/internal/tracker"
)

// FakeTimer is a timer armed on a FakeScheduler.
type FakeTimer struct {
	s        *FakeScheduler
	Interval time.Duration
	periodic bool
	f        func()
	stopped  bool
}

// Stop disarms the timer.
func (t *FakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// FakeScheduler records armed timers and fires them on demand.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

var _ tracker.Scheduler = (*FakeScheduler)(nil)

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) tracker.Timer {
	return s.arm(d, f, false)
}

func (s *FakeScheduler) Every(d time.Duration, f func()) tracker.Timer {
	return s.arm(d, f, true)
}

func (s *FakeScheduler) arm(d time.Duration, f func(), periodic bool) *FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &FakeTimer{s: s, Interval: d, periodic: periodic, f: f}
	s.timers = append(s.timers, t)
	return t
}

// FireTicks runs every live periodic callback once and returns how many ran.
func (s *FakeScheduler) FireTicks() int {
	return s.fire(true)
}

// FireOneShots runs every live one-shot callback. Fired one-shots are spent.
func (s *FakeScheduler) FireOneShots() int {
	return s.fire(false)
}

func (s *FakeScheduler) fire(periodic bool) int {
	s.mu.Lock()
	var due []func()
	for _, t := range s.timers {
		if t.stopped || t.periodic != periodic {
			continue
		}
		if !periodic {
			t.stopped = true
		}
		due = append(due, t.f)
	}
	s.mu.Unlock()

	for _, f := range due {
		f()
	}
	return len(due)
}

// Tickers returns the intervals of the live periodic timers.
func (s *FakeScheduler) Tickers() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.timers {
		if t.periodic && !t.stopped {
			out = append(out, t.Interval)
		}
	}
	return out
}

// OneShots returns the number of live one-shot timers.
func (s *FakeScheduler) OneShots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.periodic && !t.stopped {
			n++
		}
	}
	return n
}
