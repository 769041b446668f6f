package terrain

import (
	"sync"

	"go.uber.org/multierr"
)

// WorkFunc is a unit of GPU work. It runs on the render thread.
type WorkFunc func() error

// WorkQueue is a FIFO of GPU work posted from any goroutine and drained on
// the render thread. Items run outside the queue lock, so they may post more
// work or take other locks.
type WorkQueue struct {
	mu    sync.Mutex
	items []WorkFunc
}

// Post appends f to the queue.
func (q *WorkQueue) Post(f WorkFunc) {
	q.mu.Lock()
	q.items = append(q.items, f)
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *WorkQueue) pop() (WorkFunc, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	f := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return f, true
}

// Drain runs up to limit items in order and returns how many ran. Without
// isolate the first failing item stops the drain and its error is returned;
// the items after it stay queued. With isolate every failure is collected
// and draining continues.
func (q *WorkQueue) Drain(limit int, isolate bool) (int, error) {
	var errs error
	ran := 0
	for ran < limit {
		f, ok := q.pop()
		if !ok {
			break
		}
		ran++
		if err := f(); err != nil {
			if !isolate {
				return ran, err
			}
			errs = multierr.Append(errs, err)
		}
	}
	return ran, errs
}
