package engine

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/comm-runtime/errors"
)

// inboxCapacity bounds the submit inbox. Large enough that a
// single-threaded issuing caller never observes backpressure.
const inboxCapacity = 4096

// completionCapacity bounds the SPSC queue between the progress loop and
// the dispatcher. The progress loop waits with backoff when it is full.
const completionCapacity = 1024

type opKind uint8

const (
	opTagSend opKind = iota
	opTagRecv
	opStreamSend
	opStreamRecv
	opCancel
	opCloseEP
	// Cross-worker traffic below: deliveries and acks submitted by the
	// peer worker's progress loop.
	opDeliverTag
	opDeliverStream
	opAck
	opPeerClosed
)

// op is the unit of work flowing through a worker's inbox. Local issues,
// cancellations, and peer-worker deliveries all take this shape.
type op struct {
	req     *Request
	ep      *Endpoint
	ackTo   *Worker
	ackReq  *Request
	err     error
	buf     []byte
	payload []byte
	tag     Tag
	nbytes  int
	kind    opKind
}

// inbound is a tagged message that arrived before a matching receive was
// posted.
type inbound struct {
	payload []byte
	tag     Tag
}

// completion carries one finished request from the progress loop to the
// dispatcher.
type completion struct {
	req      *Request
	err      error
	received int
}

func (c *completion) deliver() {
	if c.req.recvCB != nil {
		c.req.recvCB(c.err, c.received)
		return
	}
	c.req.sendCB(c.err)
}

// Worker owns tag matching and completion delivery for its endpoints.
type Worker struct {
	id       uuid.UUID
	registry *Registry
	inbox    chan op
	stop     chan struct{}

	// posted and unexpected belong to the progress goroutine.
	posted     map[Tag][]*Request
	unexpected []inbound

	comps     lfq.SPSC[*completion]
	done      atomix.Uint32
	closeOnce sync.Once
	wg        sync.WaitGroup

	// stopMu orders inbox submissions against shutdown: once stopped is
	// set the inbox receives nothing, so the stop path can drain it to
	// empty exactly once.
	stopMu  sync.RWMutex
	stopped bool
}

// NewWorker creates a worker and starts its progress and dispatch
// goroutines.
func NewWorker() *Worker {
	w := &Worker{
		id:       uuid.New(),
		registry: NewRegistry(),
		inbox:    make(chan op, inboxCapacity),
		stop:     make(chan struct{}),
		posted:   make(map[Tag][]*Request),
	}
	w.comps.Init(completionCapacity)

	w.wg.Add(2)
	go w.run()
	go w.dispatch()

	Logger().Debug("worker started", zap.String("worker", w.id.String()))
	return w
}

// ID returns the worker's identity.
func (w *Worker) ID() uuid.UUID {
	return w.id
}

// Requests returns the worker's request registry.
func (w *Worker) Requests() *Registry {
	return w.registry
}

// TagRecv posts a tagged receive into buf[:nbytes]. The receive matches the
// first arrived or future message carrying tag; cb fires exactly once from
// the dispatch goroutine with the delivered byte count.
func (w *Worker) TagRecv(buf []byte, nbytes int, tag Tag, cb RecvCallback) *Request {
	r := &Request{worker: w, op: "tag-recv", tag: tag, nbytes: nbytes, buf: buf, recvCB: cb}
	w.registry.add(r)
	w.submit(op{kind: opTagRecv, req: r, tag: tag, buf: buf, nbytes: nbytes})
	return r
}

// Close stops the worker. Every outstanding request fails with a closed
// error, its callback is still delivered, then both goroutines exit.
// Issues against a closed worker fail the same way, from the submitting
// goroutine.
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

// submit hands an operation to the progress loop. Once the worker has
// stopped, the operation's request fails instead of being enqueued, which
// keeps the registry consistent with the callbacks actually delivered.
func (w *Worker) submit(o op) {
	var bo iox.Backoff
	for {
		w.stopMu.RLock()
		if w.stopped {
			w.stopMu.RUnlock()
			w.failDropped(o)
			return
		}
		select {
		case w.inbox <- o:
			w.stopMu.RUnlock()
			return
		default:
		}
		w.stopMu.RUnlock()
		bo.Wait()
	}
}

// drainInbox empties whatever was submitted before stopped was set and
// fails each operation. Nothing arrives afterwards.
func (w *Worker) drainInbox() {
	for {
		select {
		case o := <-w.inbox:
			w.failDropped(o)
		default:
			return
		}
	}
}

// failDropped resolves the request carried by an operation the stopped
// worker will never process. A lost delivery nacks the sender through its
// own worker; anything else fails inline, since the dispatcher may
// already be gone. Requests already claimed by failPending are left alone.
func (w *Worker) failDropped(o op) {
	if o.ackReq != nil {
		o.ackTo.submit(op{kind: opAck, req: o.ackReq, err: errors.Closed(errors.PhaseComplete, "peer worker")})
		return
	}
	r := o.req
	if r == nil || !r.finish() {
		return
	}
	r.worker.registry.finish(r, EventFailed)
	c := completion{req: r, err: errors.Closed(errors.PhaseComplete, "worker")}
	c.deliver()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			w.stopMu.Lock()
			w.stopped = true
			w.stopMu.Unlock()
			w.drainInbox()
			w.failPending()
			w.done.Add(1)
			Logger().Debug("worker stopped", zap.String("worker", w.id.String()))
			return
		case o := <-w.inbox:
			w.handle(o)
		}
	}
}

// dispatch drains the completion queue and invokes callbacks. This is the
// foreign execution context the comm bridge's adapters run in.
func (w *Worker) dispatch() {
	defer w.wg.Done()
	var bo iox.Backoff
	for {
		c, err := w.comps.Dequeue()
		if err == nil {
			c.deliver()
			bo = iox.Backoff{}
			continue
		}
		if w.done.Load() != 0 {
			// The progress loop is gone; deliver whatever it enqueued
			// before setting done, then exit.
			for {
				c, err := w.comps.Dequeue()
				if err != nil {
					return
				}
				c.deliver()
			}
		}
		bo.Wait()
	}
}

func (w *Worker) handle(o op) {
	switch o.kind {
	case opTagSend:
		w.handleTagSend(o)
	case opTagRecv:
		w.handleTagRecv(o)
	case opStreamSend:
		w.handleStreamSend(o)
	case opStreamRecv:
		w.handleStreamRecv(o)
	case opCancel:
		w.handleCancel(o.req)
	case opCloseEP:
		w.handleClose(o.ep)
	case opDeliverTag:
		w.handleDeliverTag(o)
	case opDeliverStream:
		w.handleDeliverStream(o)
	case opAck:
		if o.err != nil {
			w.finish(o.req, o.err, 0, EventFailed)
			return
		}
		w.finish(o.req, nil, 0, EventCompleted)
	case opPeerClosed:
		o.ep.remoteClosed = true
		w.failStreamQ(o.ep, errors.Closed(errors.PhaseComplete, "peer endpoint"))
	}
}

func (w *Worker) handleTagSend(o op) {
	if err := checkIssue(o.ep, o.buf, o.nbytes); err != nil {
		w.finish(o.req, err, 0, EventFailed)
		return
	}
	payload := make([]byte, o.nbytes)
	copy(payload, o.buf[:o.nbytes])
	o.ep.peer.worker.submit(op{
		kind:    opDeliverTag,
		tag:     o.tag,
		payload: payload,
		ackTo:   w,
		ackReq:  o.req,
	})
}

func (w *Worker) handleTagRecv(o op) {
	if !validSpan(o.buf, o.nbytes) {
		w.finish(o.req, errors.InvalidInput(errors.PhaseIssue, "byte count out of buffer range"), 0, EventFailed)
		return
	}
	for i, msg := range w.unexpected {
		if msg.tag != o.tag {
			continue
		}
		w.unexpected = append(w.unexpected[:i], w.unexpected[i+1:]...)
		w.completeTagRecv(o.req, msg.payload)
		return
	}
	w.posted[o.tag] = append(w.posted[o.tag], o.req)
}

func (w *Worker) handleDeliverTag(o op) {
	if q := w.posted[o.tag]; len(q) > 0 {
		r := q[0]
		if len(q) == 1 {
			delete(w.posted, o.tag)
		} else {
			w.posted[o.tag] = q[1:]
		}
		w.completeTagRecv(r, o.payload)
	} else {
		w.unexpected = append(w.unexpected, inbound{tag: o.tag, payload: o.payload})
		Logger().Debug("unexpected message queued",
			zap.String("worker", w.id.String()),
			zap.Uint64("tag", uint64(o.tag)),
			zap.Int("nbytes", len(o.payload)))
	}
	// The send completes on delivery, matched or not.
	o.ackTo.submit(op{kind: opAck, req: o.ackReq})
}

// completeTagRecv copies a matched payload into the posted buffer. The
// reported count is the message length, even when it exceeds the buffer;
// the bridge turns the disagreement into a length-mismatch error.
func (w *Worker) completeTagRecv(r *Request, payload []byte) {
	n := len(payload)
	if n > r.nbytes {
		n = r.nbytes
	}
	copy(r.buf[:n], payload[:n])
	w.finish(r, nil, len(payload), EventCompleted)
}

func (w *Worker) handleStreamSend(o op) {
	if err := checkIssue(o.ep, o.buf, o.nbytes); err != nil {
		w.finish(o.req, err, 0, EventFailed)
		return
	}
	payload := make([]byte, o.nbytes)
	copy(payload, o.buf[:o.nbytes])
	o.ep.peer.worker.submit(op{
		kind:    opDeliverStream,
		ep:      o.ep.peer,
		payload: payload,
		ackTo:   w,
		ackReq:  o.req,
	})
}

func (w *Worker) handleDeliverStream(o op) {
	if o.ep.Closed() {
		o.ackTo.submit(op{kind: opAck, req: o.ackReq, err: errors.Closed(errors.PhaseComplete, "peer endpoint")})
		return
	}
	o.ep.streamBuf = append(o.ep.streamBuf, o.payload...)
	w.drainStream(o.ep)
	o.ackTo.submit(op{kind: opAck, req: o.ackReq})
}

func (w *Worker) handleStreamRecv(o op) {
	if o.ep.Closed() {
		w.finish(o.req, errors.Closed(errors.PhaseIssue, "endpoint"), 0, EventFailed)
		return
	}
	if !validSpan(o.buf, o.nbytes) {
		w.finish(o.req, errors.InvalidInput(errors.PhaseIssue, "byte count out of buffer range"), 0, EventFailed)
		return
	}
	o.ep.streamQ = append(o.ep.streamQ, o.req)
	w.drainStream(o.ep)
}

// drainStream satisfies pending stream receives in order from the
// endpoint's buffered bytes. A receive completes with what is available.
func (w *Worker) drainStream(ep *Endpoint) {
	for len(ep.streamQ) > 0 && len(ep.streamBuf) > 0 {
		r := ep.streamQ[0]
		ep.streamQ = ep.streamQ[1:]
		n := copy(r.buf[:r.nbytes], ep.streamBuf)
		ep.streamBuf = ep.streamBuf[n:]
		w.finish(r, nil, n, EventCompleted)
	}
	if len(ep.streamBuf) == 0 {
		ep.streamBuf = nil
	}
}

func (w *Worker) handleCancel(r *Request) {
	if r.Completed() {
		return
	}
	switch r.op {
	case "tag-recv":
		if q := removeReq(w.posted[r.tag], r); len(q) > 0 {
			w.posted[r.tag] = q
		} else {
			delete(w.posted, r.tag)
		}
	case "stream-recv":
		if r.endpoint != nil {
			r.endpoint.streamQ = removeReq(r.endpoint.streamQ, r)
		}
	}
	// Sends already forwarded race with their ack; the request's
	// completion guard drops whichever arrives second.
	w.finish(r, errors.Canceled(r.op), 0, EventCanceled)
}

func (w *Worker) handleClose(ep *Endpoint) {
	if ep.closed.Add(1) != 1 {
		return
	}
	Logger().Debug("endpoint closed", zap.String("endpoint", ep.id.String()))
	w.failStreamQ(ep, errors.Closed(errors.PhaseComplete, "endpoint"))
	ep.streamBuf = nil
	if ep.peer != nil {
		ep.peer.worker.submit(op{kind: opPeerClosed, ep: ep.peer})
	}
}

func (w *Worker) failStreamQ(ep *Endpoint, cause error) {
	for _, r := range ep.streamQ {
		w.finish(r, cause, 0, EventFailed)
	}
	ep.streamQ = nil
}

// failPending fails every still-registered request when the worker stops,
// so callbacks observe a terminal outcome during graceful drain. The
// registry holds exactly the unfinished requests: posted tagged receives,
// queued stream receives, and sends whose peer ack never arrived.
func (w *Worker) failPending() {
	cause := errors.Closed(errors.PhaseComplete, "worker")
	for _, r := range w.registry.pending() {
		w.finish(r, cause, 0, EventFailed)
	}
	w.posted = nil
	w.unexpected = nil
}

// finish claims the request's single completion and hands it to the
// dispatcher. Later claims for the same request are dropped here.
func (w *Worker) finish(r *Request, err error, received int, ev EventType) {
	if !r.finish() {
		return
	}
	w.registry.finish(r, ev)
	c := &completion{req: r, err: err, received: received}
	var bo iox.Backoff
	for w.comps.Enqueue(&c) != nil {
		bo.Wait()
	}
}

func checkIssue(ep *Endpoint, buf []byte, nbytes int) error {
	switch {
	case ep.Closed():
		return errors.Closed(errors.PhaseIssue, "endpoint")
	case ep.peer == nil:
		return errors.NotFound(errors.PhaseIssue, "peer endpoint")
	case ep.remoteClosed:
		return errors.Closed(errors.PhaseIssue, "peer endpoint")
	case !validSpan(buf, nbytes):
		return errors.InvalidInput(errors.PhaseIssue, "byte count out of buffer range")
	}
	return nil
}

func validSpan(buf []byte, nbytes int) bool {
	return nbytes >= 0 && nbytes <= len(buf)
}

func removeReq(list []*Request, r *Request) []*Request {
	for i, x := range list {
		if x == r {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
