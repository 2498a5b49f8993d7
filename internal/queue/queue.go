// Package queue provides the unbounded FIFOs that connect the network
// goroutine to the host loop.
package queue

import (
	"sync"

	"github.com/eapache/queue"
)

// Queue is an unbounded, ordered, goroutine-safe FIFO of text messages.
// There is no capacity bound and no deduplication.
type Queue struct {
	mu    sync.Mutex
	items *queue.Queue
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{items: queue.New()}
}

// Push appends a message. It never blocks on the consumer.
func (q *Queue) Push(msg string) {
	q.mu.Lock()
	q.items.Add(msg)
	q.mu.Unlock()
}

// TryPop removes the oldest message without blocking. ok is false when the
// queue is empty.
func (q *Queue) TryPop() (msg string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Length() == 0 {
		return "", false
	}
	return q.items.Remove().(string), true
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Drain removes and returns the messages queued at the time of the call.
// Messages pushed while the caller processes the result wait for the next
// Drain.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.items.Length()
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, q.items.Remove().(string))
	}
	return out
}
