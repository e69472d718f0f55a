package core

import (
	"context"
	"runtime"
)

// TxQueues are the task-side producer ends matching a TxSources
type TxQueues struct {
	S16 *Producer[Sample16]
	S32 *Producer[Sample32]
}

// RxQueues are the task-side consumer ends matching an RxSinks
type RxQueues struct {
	S16 *Consumer[Timed[Sample16]]
	S32 *Consumer[Timed[Sample32]]
}

// NewTxQueues creates both transmit queues with the given capacity
func NewTxQueues(capacity int) (TxSources, TxQueues) {
	p16, c16 := NewQueue[Sample16](capacity).Split()
	p32, c32 := NewQueue[Sample32](capacity).Split()
	return TxSources{S16: c16, S32: c32}, TxQueues{S16: p16, S32: p32}
}

// NewRxQueues creates both receive queues with the given capacity
func NewRxQueues(capacity int) (RxSinks, RxQueues) {
	p16, c16 := NewQueue[Timed[Sample16]](capacity).Split()
	p32, c32 := NewQueue[Timed[Sample32]](capacity).Split()
	return RxSinks{S16: p16, S32: p32}, RxQueues{S16: c16, S32: c32}
}

// Preload enqueues samples until the queue is full and returns how many
// were accepted
func Preload[S any](p *Producer[S], samples []S) int {
	for i, s := range samples {
		if !p.Enqueue(s) {
			return i
		}
	}
	return len(samples)
}

// Drain appends every queued element to dst
func Drain[S any](c *Consumer[S], dst []S) []S {
	for {
		v, ok := c.Dequeue()
		if !ok {
			return dst
		}
		dst = append(dst, v)
	}
}

// WaitFull spins until the queue is full or ctx is done. Task context only.
func WaitFull[S any](ctx context.Context, c *Consumer[S]) error {
	for c.Len() < c.Cap() {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}

// Samples strips the timestamps from received samples
func Samples[S any](in []Timed[S]) []S {
	out := make([]S, len(in))
	for i, t := range in {
		out[i] = t.Sample
	}
	return out
}
