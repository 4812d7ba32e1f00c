package frame

import (
	"sync"
	"time"
)

// Handle identifies a queued frame callback. Zero means "none".
type Handle uint64

// Func is run once on the frame it was queued for, with the frame's
// timestamp measured from the start of the render loop.
type Func func(now time.Duration)

type queued struct {
	handle Handle
	fn     Func
}

// Scheduler is a requestAnimationFrame-style queue driven by the render
// loop calling Tick once per frame. Request, Cancel and Tick must be called
// from the loop goroutine; Post may be called from anywhere.
type Scheduler struct {
	mu     sync.Mutex
	next   Handle
	queue  []queued
	live   map[Handle]struct{}
	posted []func()
}

func NewScheduler() *Scheduler {
	return &Scheduler{live: make(map[Handle]struct{})}
}

// Request queues fn for the next Tick.
func (s *Scheduler) Request(fn Func) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	h := s.next
	s.queue = append(s.queue, queued{handle: h, fn: fn})
	s.live[h] = struct{}{}
	return h
}

// Cancel drops a queued callback. Unknown handles are ignored.
func (s *Scheduler) Cancel(h Handle) {
	if h == 0 {
		return
	}
	s.mu.Lock()
	delete(s.live, h)
	s.mu.Unlock()
}

// Post runs fn on the loop goroutine at the start of the next Tick.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// Pending reports how many frame callbacks are still queued.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Tick runs posted tasks, then every callback queued before this call.
// Callbacks requested while ticking, including from posted tasks, wait for
// the next Tick.
func (s *Scheduler) Tick(now time.Duration) {
	s.mu.Lock()
	posted := s.posted
	s.posted = nil
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range posted {
		fn()
	}

	for _, q := range batch {
		s.mu.Lock()
		_, ok := s.live[q.handle]
		delete(s.live, q.handle)
		s.mu.Unlock()

		if ok {
			q.fn(now)
		}
	}
}
