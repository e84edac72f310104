package tracker

import "sync"

// fifo is an unbounded first-in first-out buffer. push never blocks, so
// producers such as the native messaging reader cannot stall behind a busy
// consumer that is itself waiting on them.
type fifo[T any] struct {
	mu     sync.Mutex
	items  []T
	signal chan struct{}
}

func newFIFO[T any]() *fifo[T] {
	return &fifo[T]{signal: make(chan struct{}, 1)}
}

func (f *fifo[T]) push(v T) {
	f.mu.Lock()
	f.items = append(f.items, v)
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

func (f *fifo[T]) pop() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	if len(f.items) == 0 {
		return zero, false
	}
	v := f.items[0]
	f.items[0] = zero
	f.items = f.items[1:]
	return v, true
}

func (f *fifo[T]) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
