package keeper

import "sync"

// taskQueue is an unbounded FIFO of pending Promises guarded by a mutex and
// condition variable. Enqueue never blocks; Dequeue blocks until an entry is
// available or the caller's run is stopped. A stopped worker still drains
// entries that are already queued (drain-then-exit).
type taskQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []*Promise
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends to the tail and wakes one waiting worker.
func (q *taskQueue) Enqueue(p *Promise) {
	q.mu.Lock()
	q.items = append(q.items, p)
	q.cond.Signal()
	q.mu.Unlock()
}

// Dequeue removes and returns the head entry, blocking while the queue is
// empty. stopped is the caller's run flag: when it reports true and the
// queue is empty, Dequeue returns false and the worker should exit.
func (q *taskQueue) Dequeue(stopped func() bool) (*Promise, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if len(q.items) > 0 {
			p := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			return p, true
		}
		if stopped() {
			return nil, false
		}
		q.cond.Wait()
	}
}

// Wake wakes every waiting worker so each can re-check its stop flag. The
// broadcast happens under the queue mutex so a worker between its stop check
// and cond.Wait cannot miss it.
func (q *taskQueue) Wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Size is an instantaneous, best-effort count. Used for the auto-stop
// heuristic and metrics, never for correctness-critical decisions.
func (q *taskQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue held no entries at the time of the call.
func (q *taskQueue) IsEmpty() bool {
	return q.Size() == 0
}
