package core

// Resource guards a value shared between interrupt handlers of different
// priorities and task code. Lock runs fn with interrupts masked.
//
// Lock ordering: when both the edge controller and a driver binding are
// needed, the edge controller is always taken first. LockBoth enforces
// this for the Port entry points.
type Resource[T any] struct {
	value T
	mu    resourceLock
}

// NewResource wraps v
func NewResource[T any](v T) *Resource[T] {
	return &Resource[T]{value: v}
}

// Lock runs fn with exclusive access to the value
func (r *Resource[T]) Lock(fn func(T)) {
	state := disableInterrupts()
	r.mu.lock()
	defer func() {
		r.mu.unlock()
		restoreInterrupts(state)
	}()
	fn(r.value)
}

// LockBoth takes first, then second, and runs fn with both values
func LockBoth[A, B any](first *Resource[A], second *Resource[B], fn func(A, B)) {
	first.Lock(func(a A) {
		second.Lock(func(b B) {
			fn(a, b)
		})
	})
}

// pairGuard holds two resources locked in order. Interrupt entry points use
// it instead of LockBoth so they do not build closures.
type pairGuard struct {
	state  State
	first  *resourceLock
	second *resourceLock
}

func lockPair(first, second *resourceLock) pairGuard {
	g := pairGuard{state: disableInterrupts(), first: first, second: second}
	first.lock()
	second.lock()
	return g
}

func (g pairGuard) unlock() {
	g.second.unlock()
	g.first.unlock()
	restoreInterrupts(g.state)
}
