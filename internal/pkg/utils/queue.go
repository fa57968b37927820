package utils

import (
	"context"
	"sync"
)

// IDQueue is an in-memory FIFO of job IDs, safe for use by multiple
// producers and multiple consumers. Pop blocks until an item is available
// or the context is done.
type IDQueue struct {
	lock   sync.Mutex
	items  []string
	wakeCh chan struct{}
}

// NewIDQueue creates a queue
func NewIDQueue() *IDQueue {
	return &IDQueue{wakeCh: make(chan struct{}, 1)}
}

// Push appends an ID to the queue tail
func (q *IDQueue) Push(id string) {
	q.lock.Lock()
	q.items = append(q.items, id)
	q.lock.Unlock()
	select {
	case q.wakeCh <- struct{}{}:
	default:
	}
}

// Pop takes the ID at the queue head, blocking while the queue is empty
func (q *IDQueue) Pop(ctx context.Context) (string, error) {
	for {
		q.lock.Lock()
		if len(q.items) > 0 {
			res := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.lock.Unlock()
			if more {
				// several consumers may be waiting on one wake signal
				select {
				case q.wakeCh <- struct{}{}:
				default:
				}
			}
			return res, nil
		}
		q.lock.Unlock()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.wakeCh:
		}
	}
}

// Len returns the count of IDs not yet popped
func (q *IDQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.items)
}
