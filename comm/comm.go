package comm

import (
	"github.com/wippyai/comm-runtime/engine"
	"github.com/wippyai/comm-runtime/errors"
)

// PendingRecord is caller-owned bookkeeping for one outstanding operation.
// The entry point populates both fields once, before returning; the bridge
// never reads them back. A canceller uses Request for the out-of-band
// abort and Awaitable to observe the outcome.
type PendingRecord struct {
	Awaitable *Awaitable
	Request   *engine.Request
}

// Conn binds an engine endpoint to the scheduling context its completions
// resolve into.
type Conn struct {
	ep   *engine.Endpoint
	loop *Loop
}

// NewConn wraps an endpoint for use with loop.
func NewConn(ep *engine.Endpoint, loop *Loop) *Conn {
	return &Conn{ep: ep, loop: loop}
}

// Endpoint returns the underlying engine endpoint.
func (c *Conn) Endpoint() *engine.Endpoint {
	return c.ep
}

// Worker binds an engine worker to a scheduling context for tagged
// receives, which match worker-wide rather than per connection.
type Worker struct {
	w    *engine.Worker
	loop *Loop
}

// NewWorker wraps a worker for use with loop.
func NewWorker(w *engine.Worker, loop *Loop) *Worker {
	return &Worker{w: w, loop: loop}
}

// Engine returns the underlying engine worker.
func (w *Worker) Engine() *engine.Worker {
	return w.w
}

// TagSend issues a tagged message send of buf[:nbytes] and returns its
// Awaitable without blocking.
func (c *Conn) TagSend(buf []byte, nbytes int, tag engine.Tag, pending *PendingRecord) *Awaitable {
	aw := newAwaitable()
	req := c.ep.TagSend(buf, nbytes, tag, sendComplete(c.loop, aw, "tag-send"))
	publish(pending, aw, req)
	return aw
}

// TagRecv posts a tagged receive into buf[:nbytes] and returns its
// Awaitable without blocking. The expected count is fixed here; a
// completion delivering any other count resolves to a length-mismatch
// error.
func (w *Worker) TagRecv(buf []byte, nbytes int, tag engine.Tag, pending *PendingRecord) *Awaitable {
	aw := newAwaitable()
	req := w.w.TagRecv(buf, nbytes, tag, recvComplete(w.loop, aw, "tag-recv", nbytes))
	publish(pending, aw, req)
	return aw
}

// StreamSend issues an ordered stream send of buf[:nbytes] and returns its
// Awaitable without blocking.
func (c *Conn) StreamSend(buf []byte, nbytes int, pending *PendingRecord) *Awaitable {
	aw := newAwaitable()
	req := c.ep.StreamSend(buf, nbytes, sendComplete(c.loop, aw, "stream-send"))
	publish(pending, aw, req)
	return aw
}

// StreamRecv issues a stream receive into buf[:nbytes] and returns its
// Awaitable without blocking.
func (c *Conn) StreamRecv(buf []byte, nbytes int, pending *PendingRecord) *Awaitable {
	aw := newAwaitable()
	req := c.ep.StreamRecv(buf, nbytes, recvComplete(c.loop, aw, "stream-recv", nbytes))
	publish(pending, aw, req)
	return aw
}

// publish fills the caller's PendingRecord before the entry point returns,
// so a cancelling caller always observes a valid handle.
func publish(p *PendingRecord, aw *Awaitable, req *engine.Request) {
	if p == nil {
		return
	}
	p.Awaitable = aw
	p.Request = req
}

// sendComplete builds the completion adapter for send operations. It runs
// on the engine's dispatch goroutine and does nothing but resolve.
func sendComplete(loop *Loop, aw *Awaitable, op string) engine.SendCallback {
	return func(err error) {
		if loop.Closed() {
			return
		}
		if err != nil {
			aw.resolve(errors.Transfer(op, err))
			return
		}
		aw.resolve(nil)
	}
}

// recvComplete builds the completion adapter for receive operations. Same
// as sendComplete plus the byte-count comparison against the expected
// count captured at issue time.
func recvComplete(loop *Loop, aw *Awaitable, op string, expected int) engine.RecvCallback {
	return func(err error, received int) {
		if loop.Closed() {
			return
		}
		if err != nil {
			aw.resolve(errors.Transfer(op, err))
			return
		}
		if received != expected {
			aw.resolve(errors.LengthMismatch(expected, received))
			return
		}
		aw.resolve(nil)
	}
}
