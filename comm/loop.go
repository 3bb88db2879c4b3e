package comm

import (
	"code.hybscloud.com/atomix"
)

// Loop stands for the caller's cooperative scheduling context. Completion
// adapters consult it before resolving: once the loop is closed, late
// completions are dropped silently instead of resolving into a context
// nobody observes anymore.
//
// The capability is explicit rather than a hidden global so the teardown
// race stays visible and testable.
type Loop struct {
	closed atomix.Uint32
}

// NewLoop creates an open scheduling context.
func NewLoop() *Loop {
	return &Loop{}
}

// Close marks the context torn down. Idempotent. Closing does not cancel
// native operations; it only stops their completions from resolving
// awaitables.
func (l *Loop) Close() {
	l.closed.Add(1)
}

// Closed reports whether the context still accepts completions.
func (l *Loop) Closed() bool {
	return l.closed.Load() != 0
}
