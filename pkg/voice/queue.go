package voice

import (
	"sync"
	"time"
)

// DefaultSpacing is the minimum gap between consecutive requests, on top of
// the synthesis client's own network throttle.
const DefaultSpacing = 500 * time.Millisecond

// requestQueue serializes speech requests into a single in-order stream.
//
// Enqueue appends and, if no drain is running, starts one. The drain
// goroutine processes one request at a time until the queue is empty, then
// exits; the next Enqueue starts a fresh drain. All mutation happens under
// the mutex, so Enqueue is safe from any goroutine (HTTP handlers, retry
// timers, the drain itself).
type requestQueue struct {
	mu       sync.Mutex
	items    []Request
	draining bool

	spacing time.Duration
	process func(Request)
}

func newRequestQueue(spacing time.Duration, process func(Request)) *requestQueue {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	return &requestQueue{
		spacing: spacing,
		process: process,
	}
}

// Enqueue appends a request and ensures a drain is running.
func (q *requestQueue) Enqueue(r Request) {
	q.mu.Lock()
	q.items = append(q.items, r)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// Len returns the number of pending requests, excluding the one being
// processed.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// drain processes requests in insertion order until the queue empties.
func (q *requestQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		r := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.process(r)
		time.Sleep(q.spacing)
	}
}
