package reactive

import (
	"fmt"
	"runtime/debug"
)

// ReactorError reports a panic raised while a reactor was running.
type ReactorError struct {
	ReactorID uint64
	Name      string
	Priority  Priority

	// Value is the recovered panic value.
	Value any

	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *ReactorError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("reactor %d (%s) failed: %v", e.ReactorID, e.Name, e.Value)
	}
	return fmt.Sprintf("reactor %d failed: %v", e.ReactorID, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ReactorError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newReactorError(r *Reactor, v any) *ReactorError {
	return &ReactorError{
		ReactorID: r.id,
		Name:      r.name,
		Priority:  r.priority,
		Value:     v,
		Stack:     debug.Stack(),
	}
}
