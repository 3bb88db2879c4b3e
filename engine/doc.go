// Package engine provides the native transfer substrate consumed by the
// comm bridge.
//
// The engine exposes four issue primitives — tagged send/receive and stream
// send/receive — that return an in-flight Request immediately and invoke a
// completion callback exactly once, later, from the engine's own dispatch
// goroutine. This is the contract the comm package builds its awaitables on.
//
// # Architecture
//
// The package provides three main types:
//
//	Worker   - Owns tag matching, the progress loop, and completion dispatch
//	Endpoint - One side of a connected pair; carries sends and stream state
//	Request  - An in-flight handle, usable for out-of-band cancellation
//
// # Execution Model
//
// Each Worker runs two goroutines:
//
//  1. The progress loop consumes the worker's submit inbox (issued
//     operations, deliveries from the peer worker, acks) and performs all
//     matching and state transitions. It is the only writer of matching
//     state, so no locks are taken on the data path.
//  2. The dispatcher drains a bounded lock-free SPSC completion queue
//     (code.hybscloud.com/lfq) with adaptive backoff
//     (code.hybscloud.com/iox) and invokes callbacks. Callbacks therefore
//     always run on a goroutine foreign to the issuing caller.
//
// Issue primitives must be called from a single caller goroutine per
// worker; the cooperative scheduler model of the comm package satisfies
// this by construction.
//
// # Loopback Transport
//
// Pipe connects two endpoints in process. Tagged messages are matched
// against posted receives FIFO per tag; unmatched arrivals are queued until
// a receive is posted. Stream bytes are delivered in order per endpoint; a
// posted stream receive completes with whatever is available, which may be
// fewer bytes than requested. A send completes when the peer worker accepts
// the delivery.
//
// # Request Lifecycle
//
// Every issued request is recorded in the worker's Registry and removed on
// completion. Observers subscribed to the Registry receive issued,
// completed, failed, and canceled events; aggregate counters are readable
// at any time via Stats.
//
// # Buffer Ownership
//
// The caller's buffer belongs to the engine from issue until the callback
// fires. The engine copies send payloads on its progress loop and writes
// receive buffers there as well; the caller must not touch the buffer in
// between.
package engine
