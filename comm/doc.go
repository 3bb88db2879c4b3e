// Package comm bridges the engine's callback-driven transfer primitives to
// awaitable results for a single-threaded cooperative caller.
//
// Each entry point issues exactly one native operation and returns an
// Awaitable immediately, without blocking. The engine later invokes a
// completion adapter from its own dispatch goroutine; the adapter validates
// the outcome and resolves the Awaitable exactly once.
//
// # Quick Start
//
//	loop := comm.NewLoop()
//	conn := comm.NewConn(ep, loop)
//	recv := comm.NewWorker(worker, loop)
//
//	aw := conn.TagSend(buf, len(buf), 42, nil)
//	if err := aw.Await(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Completion Protocol
//
// The adapter applies the same rules for every operation kind:
//
//  1. If the Loop has been closed, the completion is discarded silently and
//     the Awaitable stays pending forever. Resolving into a torn-down
//     scheduling context has no consumer; this shutdown race is accepted,
//     not reported.
//  2. An error outcome resolves the Awaitable to a transfer error wrapping
//     the native cause unaltered.
//  3. For receives, a delivered byte count that differs from the count
//     declared at issue time resolves to a length-mismatch error carrying
//     both values.
//  4. Otherwise the Awaitable resolves to success.
//
// # Cancellation
//
// The bridge performs no cancellation of its own. Callers that need it pass
// a PendingRecord; the entry point publishes the in-flight engine Request
// and the Awaitable into it before returning, so a canceller always
// observes a valid handle. After Request.Cancel the Awaitable resolves to
// the engine's canceled error, wrapped as a transfer error, unless the Loop
// closed first.
//
// # Buffer Ownership
//
// The transfer buffer belongs to the engine from issue until the Awaitable
// resolves. The bridge never copies it.
package comm
