package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Timer is an armed callback that can be disarmed.
type Timer interface {
	// Stop disarms the timer. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler arms one-shot and periodic callbacks. Callbacks run on their own
// goroutine and must only post events back to the tracker.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks with the time package.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func (RealScheduler) Every(d time.Duration, f func()) Timer {
	tk := &ticker{t: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-tk.t.C:
				f()
			case <-tk.done:
				return
			}
		}
	}()
	return tk
}

type ticker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (tk *ticker) Stop() bool {
	stopped := false
	tk.once.Do(func() {
		tk.t.Stop()
		close(tk.done)
		stopped = true
	})
	return stopped
}

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
