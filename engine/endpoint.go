package engine

import (
	"code.hybscloud.com/atomix"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Endpoint is one side of a connected pair. Sends and stream operations are
// issued on an endpoint; tagged receives are issued on its worker, since
// tag matching is worker-scoped.
type Endpoint struct {
	id     uuid.UUID
	worker *Worker
	peer   *Endpoint

	// closed is written on the progress loop and readable anywhere.
	closed atomix.Uint32

	// Progress-loop state. Never touched outside the owning worker's
	// progress goroutine.
	remoteClosed bool
	streamBuf    []byte
	streamQ      []*Request
}

// Pipe connects two endpoints in process, one per worker. The same worker
// may serve both sides.
func Pipe(a, b *Worker) (*Endpoint, *Endpoint) {
	ea := &Endpoint{id: uuid.New(), worker: a}
	eb := &Endpoint{id: uuid.New(), worker: b}
	ea.peer, eb.peer = eb, ea

	Logger().Debug("endpoints paired",
		zap.String("a", ea.id.String()),
		zap.String("b", eb.id.String()))
	return ea, eb
}

// ID returns the endpoint's identity.
func (e *Endpoint) ID() uuid.UUID {
	return e.id
}

// Worker returns the worker that owns this endpoint's progress.
func (e *Endpoint) Worker() *Worker {
	return e.worker
}

// Closed reports whether Close has taken effect.
func (e *Endpoint) Closed() bool {
	return e.closed.Load() != 0
}

// Close tears down the endpoint. Outstanding stream receives on either
// side fail with a closed error; subsequent issues fail the same way.
func (e *Endpoint) Close() {
	e.worker.submit(op{kind: opCloseEP, ep: e})
}

// TagSend issues a tagged message send of buf[:nbytes]. cb fires exactly
// once from the engine's dispatch goroutine. The buffer must stay valid and
// unmodified until then.
func (e *Endpoint) TagSend(buf []byte, nbytes int, tag Tag, cb SendCallback) *Request {
	r := &Request{worker: e.worker, endpoint: e, op: "tag-send", tag: tag, nbytes: nbytes, sendCB: cb}
	e.worker.registry.add(r)
	e.worker.submit(op{kind: opTagSend, req: r, ep: e, tag: tag, buf: buf, nbytes: nbytes})
	return r
}

// StreamSend issues an ordered stream send of buf[:nbytes].
func (e *Endpoint) StreamSend(buf []byte, nbytes int, cb SendCallback) *Request {
	r := &Request{worker: e.worker, endpoint: e, op: "stream-send", nbytes: nbytes, sendCB: cb}
	e.worker.registry.add(r)
	e.worker.submit(op{kind: opStreamSend, req: r, ep: e, buf: buf, nbytes: nbytes})
	return r
}

// StreamRecv issues a stream receive into buf[:nbytes]. The receive
// completes with whatever contiguous bytes are available, which may be
// fewer than nbytes.
func (e *Endpoint) StreamRecv(buf []byte, nbytes int, cb RecvCallback) *Request {
	r := &Request{worker: e.worker, endpoint: e, op: "stream-recv", nbytes: nbytes, buf: buf, recvCB: cb}
	e.worker.registry.add(r)
	e.worker.submit(op{kind: opStreamRecv, req: r, ep: e, buf: buf, nbytes: nbytes})
	return r
}
