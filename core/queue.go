package core

import "sync/atomic"

// DefaultQueueCapacity is the depth of the sample queues between the
// interrupt handlers and the session consumers
const DefaultQueueCapacity = 8

// Queue is a bounded lock-free single-producer single-consumer ring.
// It holds exactly Cap() elements and never overwrites: an enqueue into a
// full queue fails.
//
// The producer and consumer sides are obtained with Split and each must be
// used from one context only (for example the interrupt handler and the
// task loop).
//
// Positions count modulo twice the capacity, so full and empty stay
// distinct and the slot index never jumps for any capacity.
type Queue[T any] struct {
	buffer   []T
	span     uint32 // 2 * capacity
	writePos atomic.Uint32
	readPos  atomic.Uint32
}

// NewQueue creates a queue holding capacity elements
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 || capacity > 1<<30 {
		panic("queue capacity out of range")
	}
	return &Queue[T]{buffer: make([]T, capacity), span: 2 * uint32(capacity)}
}

func (q *Queue[T]) advance(pos uint32) uint32 {
	pos++
	if pos == q.span {
		return 0
	}
	return pos
}

func (q *Queue[T]) slot(pos uint32) uint32 {
	if n := uint32(len(q.buffer)); pos >= n {
		return pos - n
	}
	return pos
}

func (q *Queue[T]) length(w, r uint32) int {
	if w >= r {
		return int(w - r)
	}
	return int(w + q.span - r)
}

// Split returns the producer and consumer endpoints of the queue
func (q *Queue[T]) Split() (*Producer[T], *Consumer[T]) {
	return &Producer[T]{q: q}, &Consumer[T]{q: q}
}

// Cap returns the number of elements the queue can hold
func (q *Queue[T]) Cap() int {
	return len(q.buffer)
}

// Len returns the number of queued elements
func (q *Queue[T]) Len() int {
	return q.length(q.writePos.Load(), q.readPos.Load())
}

// Producer is the enqueue side of a Queue
type Producer[T any] struct {
	q *Queue[T]
}

// Enqueue appends v, returning false without modifying the queue when full
func (p *Producer[T]) Enqueue(v T) bool {
	w := p.q.writePos.Load()
	if p.q.length(w, p.q.readPos.Load()) >= len(p.q.buffer) {
		return false
	}
	p.q.buffer[p.q.slot(w)] = v
	p.q.writePos.Store(p.q.advance(w))
	return true
}

// Ready reports whether at least one more element fits
func (p *Producer[T]) Ready() bool {
	return p.q.Len() < len(p.q.buffer)
}

func (p *Producer[T]) Len() int { return p.q.Len() }
func (p *Producer[T]) Cap() int { return p.q.Cap() }

// Consumer is the dequeue side of a Queue
type Consumer[T any] struct {
	q *Queue[T]
}

// Dequeue removes the oldest element. When empty it returns the zero
// value and false; the transmit handlers send that zero as silence.
func (c *Consumer[T]) Dequeue() (T, bool) {
	var zero T
	r := c.q.readPos.Load()
	if r == c.q.writePos.Load() {
		return zero, false
	}
	idx := c.q.slot(r)
	v := c.q.buffer[idx]
	c.q.buffer[idx] = zero
	c.q.readPos.Store(c.q.advance(r))
	return v, true
}

// Ready reports whether at least one element is available
func (c *Consumer[T]) Ready() bool {
	return c.q.Len() > 0
}

func (c *Consumer[T]) Len() int { return c.q.Len() }
func (c *Consumer[T]) Cap() int { return c.q.Cap() }
