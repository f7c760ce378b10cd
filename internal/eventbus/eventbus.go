package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber channel capacity used by New.
const DefaultBuffer = 64

// Publisher is the sending half of a bus.
type Publisher[T any] interface {
	Publish(T)
}

// Bus is a type-safe publish/subscribe bus with fan-out channels.
// Publishing never blocks. A Subscribe channel whose buffer is full misses
// the event; a SubscribeQueued channel queues it instead.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []*subscriber[T]
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

type subscriber[T any] struct {
	ch chan T
	q  *queue[T]
}

// New creates a Bus with DefaultBuffer sized subscriber channels.
func New[T any]() *Bus[T] { return NewWithBuffer[T](DefaultBuffer) }

// NewWithBuffer creates a Bus whose subscriber channels hold size events.
func NewWithBuffer[T any](size int) *Bus[T] {
	if size < 0 {
		size = 0
	}
	return &Bus[T]{buffer: size}
}

// Publish sends the event to all subscribers.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if s.q != nil {
			s.q.push(e)
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe registers a subscriber and returns its channel.
func (b *Bus[T]) Subscribe() <-chan T {
	return b.add(&subscriber[T]{ch: make(chan T, b.buffer)})
}

// SubscribeQueued registers a subscriber that never misses an event.
// Events wait in an unbounded queue until the reader takes them. After Close
// the queue is drained before the channel is closed; Unsubscribe discards it.
func (b *Bus[T]) SubscribeQueued() <-chan T {
	s := &subscriber[T]{ch: make(chan T), q: newQueue[T]()}
	ch := b.add(s)
	go s.q.pump(s.ch)
	return ch
}

func (b *Bus[T]) add(s *subscriber[T]) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		if s.q != nil {
			s.q.finish(true)
		} else {
			close(s.ch)
		}
		return s.ch
	}
	b.subs = append(b.subs, s)
	return s.ch
}

// Unsubscribe removes the subscriber and closes its channel. It is safe
// after Close and stops a queued subscriber that is still draining.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if s.q != nil {
				s.q.finish(false)
			} else if !b.closed {
				close(s.ch)
			}
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		if s.q != nil {
			s.q.finish(true)
		} else {
			close(s.ch)
		}
	}
}

// queue feeds a channel from an unbounded FIFO.
type queue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	done    bool
	stopped bool
	stop    chan struct{}
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{stop: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue[T]) push(e T) {
	q.mu.Lock()
	if !q.done {
		q.items = append(q.items, e)
		q.cond.Signal()
	}
	q.mu.Unlock()
}

// finish ends the queue. With drain set, pending items are still delivered.
func (q *queue[T]) finish(drain bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped || (q.done && drain) {
		return
	}
	q.done = true
	if !drain {
		q.stopped = true
		close(q.stop)
	}
	q.cond.Signal()
}

func (q *queue[T]) pump(ch chan T) {
	defer close(ch)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.done {
			q.cond.Wait()
		}
		if q.stopped || len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		e := q.items[0]
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case ch <- e:
		case <-q.stop:
			return
		}
	}
}
