package events

import "sync"

// Queue is an unbounded FIFO. Push never blocks; a single goroutine hands
// items to Out in the order they were pushed.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	out    chan T
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewQueue starts a queue. Call Close to release its goroutine.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{
		out:    make(chan T),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.pump()
	return q
}

// Push appends v. It reports false once the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Out delivers queued items. It is closed after Close.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

// Len reports the number of items not yet received.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops delivery and drops pending items.
func (q *Queue[T]) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.items = nil
		q.mu.Unlock()
		close(q.done)
	})
}

func (q *Queue[T]) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.notify:
				continue
			case <-q.done:
				return
			}
		}
		item := q.items[0]
		q.mu.Unlock()

		select {
		case q.out <- item:
			q.mu.Lock()
			if len(q.items) > 0 {
				var zero T
				q.items[0] = zero
				q.items = q.items[1:]
			}
			q.mu.Unlock()
		case <-q.done:
			return
		}
	}
}
