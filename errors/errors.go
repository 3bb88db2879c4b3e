package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the request lifecycle the error occurred
type Phase string

const (
	PhaseIssue    Phase = "issue"    // submitting a request to the engine
	PhaseComplete Phase = "complete" // completion delivery and validation
	PhaseProgress Phase = "progress" // engine progress loop
	PhaseCancel   Phase = "cancel"   // out-of-band cancellation
)

// Kind categorizes the error
type Kind string

const (
	KindLengthMismatch Kind = "length_mismatch"
	KindTransfer       Kind = "transfer"
	KindClosed         Kind = "closed"
	KindCanceled       Kind = "canceled"
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
)

// Error is the structured error type surfaced by the bridge and the engine.
// Expected and Received are meaningful only for KindLengthMismatch.
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Op       string
	Detail   string
	Tag      uint64
	Expected int
	Received int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name (tag-send, tag-recv, stream-send, stream-recv)
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Tag sets the match tag of the request
func (b *Builder) Tag(tag uint64) *Builder {
	b.err.Tag = tag
	return b
}

// Counts sets the expected and received byte counts
func (b *Builder) Counts(expected, received int) *Builder {
	b.err.Expected = expected
	b.err.Received = received
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// LengthMismatch reports a receive completion whose delivered byte count
// does not match the count declared at issue time.
func LengthMismatch(expected, received int) *Error {
	return &Error{
		Phase:    PhaseComplete,
		Kind:     KindLengthMismatch,
		Expected: expected,
		Received: received,
		Detail:   fmt.Sprintf("length mismatch: %d (got) != %d (expected)", received, expected),
	}
}

// Transfer wraps a native engine failure without interpreting it.
// The cause's message is preserved verbatim and reachable via Unwrap.
func Transfer(op string, cause error) *Error {
	return &Error{
		Phase: PhaseComplete,
		Kind:  KindTransfer,
		Op:    op,
		Cause: cause,
	}
}

// Closed reports an operation against a closed endpoint or worker
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " is closed",
	}
}

// Canceled reports a request aborted by an out-of-band cancel
func Canceled(op string) *Error {
	return &Error{
		Phase: PhaseCancel,
		Kind:  KindCanceled,
		Op:    op,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what + " not found",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
