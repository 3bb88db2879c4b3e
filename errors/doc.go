// Package errors provides structured error types for the comm-runtime library.
//
// Errors are categorized by Phase (where in the request lifecycle the error
// occurred) and Kind (error category). The Error type carries the operation
// name, match tag, and byte counts where applicable, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseComplete, errors.KindLengthMismatch).
//		Op("tag-recv").
//		Tag(42).
//		Counts(100, 80).
//		Detail("length mismatch: 80 (got) != 100 (expected)").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LengthMismatch(100, 80)
//	err := errors.Transfer("stream-send", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
