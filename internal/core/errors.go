package core

import (
	"errors"
	"fmt"
)

// ErrSlowConsumer is returned by Client.Notify when its buffer is full.
var ErrSlowConsumer = errors.New("slow consumer: message dropped")

// ObserverPanicError wraps a value recovered from a panicking observer.
type ObserverPanicError struct {
	Value any
}

func (e *ObserverPanicError) Error() string {
	return fmt.Sprintf("observer panic: %v", e.Value)
}
