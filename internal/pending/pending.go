// Package pending holds launch targets opened while another process
// instance already owns the window, until the shell consumes them.
package pending

import (
	"sync"

	"github.com/starford/mudkip/internal/launch"
)

// Queue is a process-wide FIFO of open-target payloads. It lives for the
// process lifetime and is mutated only through Push and Pop.
type Queue struct {
	mu    sync.Mutex
	items []launch.TargetPayload
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a target. It never blocks beyond the internal lock and never
// drops an entry.
func (q *Queue) Push(target launch.TargetPayload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, target)
}

// Pop returns the oldest unpopped target, or nil when the queue is empty.
func (q *Queue) Pop() *launch.TargetPayload {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	target := q.items[0]
	q.items = q.items[1:]
	return &target
}

// Len returns the number of queued targets.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
