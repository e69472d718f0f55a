package core

import "errors"

// The texts double as the interrupt log messages.
var (
	ErrFrameError        = errors.New("frame error")
	ErrUnderrun          = errors.New("underrun")
	ErrOverrun           = errors.New("overrun")
	ErrQueueFull         = errors.New("queue full")
	ErrInvalidTransition = errors.New("channel error")
	ErrWouldBlock        = errors.New("operation would block")
	ErrBindingActive     = errors.New("driver already bound")
	ErrNotBound          = errors.New("driver not bound")
)
