// Package commruntime bridges a callback-driven point-to-point transfer
// engine to awaitable results for a cooperative, single-threaded caller.
//
// The engine completes transfers out of band, on its own goroutine; this
// library turns each one-shot completion into a deterministic, exactly-once
// resolution of an awaitable, with bookkeeping for callers that need to
// observe or cancel an operation while it is in flight.
//
// # Architecture Overview
//
// The library is organized into a small set of packages:
//
//	comm-runtime/
//	├── comm/       Completion bridge: entry points, Awaitable, Loop,
//	│               PendingRecord
//	├── engine/     Transfer substrate: issue primitives, tag matching,
//	│               stream framing, request registry
//	├── errors/     Structured error types (phase + kind)
//	├── cmd/        commbench workload driver with interactive TUI
//	└── examples/   Runnable usage examples
//
// # Quick Start
//
// Connect a loopback pair and run one tagged roundtrip:
//
//	wa, wb := engine.NewWorker(), engine.NewWorker()
//	ea, _ := engine.Pipe(wa, wb)
//
//	loop := comm.NewLoop()
//	conn := comm.NewConn(ea, loop)
//	recv := comm.NewWorker(wb, loop)
//
//	buf := make([]byte, 100)
//	recvAw := recv.TagRecv(buf, 100, 42, nil)
//	sendAw := conn.TagSend(payload, 100, 42, nil)
//
//	if err := sendAw.Await(ctx); err != nil { ... }
//	if err := recvAw.Await(ctx); err != nil { ... }
//
// # Completion Semantics
//
// Every issued request resolves its awaitable exactly once: success, a
// transfer error passing the native cause through unaltered, or a
// length-mismatch error when a receive delivers a byte count that differs
// from the one declared at issue time. Completions that arrive after the
// caller's Loop has been closed are dropped silently; a torn-down
// scheduling context has no consumer left to inform.
//
// # Thread Safety
//
// Issue primitives are meant to be called from a single caller goroutine
// per worker, matching the cooperative scheduling model. Awaitables may be
// observed from any goroutine; completion adapters run on the engine's
// dispatch goroutine.
//
// # Logging
//
// The engine logs through zap and is silent by default:
//
//	engine.SetLogger(logger)
package commruntime
