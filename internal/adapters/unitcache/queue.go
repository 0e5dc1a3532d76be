package unitcache

import "sync"

// writeRequest is one item for the writer. Exactly one field is set.
type writeRequest struct {
	record      *unitRecord
	consolidate []*unitRecord
	stop        bool
}

// writeQueue is an unbounded FIFO with a single consumer.
type writeQueue struct {
	mu     sync.Mutex
	items  []writeRequest
	signal chan struct{}
}

func newWriteQueue() *writeQueue {
	return &writeQueue{signal: make(chan struct{}, 1)}
}

func (q *writeQueue) push(req writeRequest) {
	q.mu.Lock()
	q.items = append(q.items, req)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// drain blocks until the queue is non-empty and returns everything queued so far.
func (q *writeQueue) drain() []writeRequest {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			items := q.items
			q.items = nil
			q.mu.Unlock()
			return items
		}
		q.mu.Unlock()
		<-q.signal
	}
}
