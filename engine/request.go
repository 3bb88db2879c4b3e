package engine

import (
	"code.hybscloud.com/atomix"
)

// Tag is the match tag for tagged messages. Tagged transfers are matched by
// tag value, not by arrival order on the connection.
type Tag uint64

// SendCallback is invoked exactly once when a send request finishes.
// A nil err means the transfer succeeded.
type SendCallback func(err error)

// RecvCallback is invoked exactly once when a receive request finishes.
// received is the delivered byte count; it is meaningful only when err is nil.
type RecvCallback func(err error, received int)

// Request is the in-flight handle for an issued operation. It is returned
// immediately by the issue primitives and remains valid until the
// completion callback has fired.
type Request struct {
	worker   *Worker
	endpoint *Endpoint
	sendCB   SendCallback
	recvCB   RecvCallback
	op       string
	id       uint64
	tag      Tag
	nbytes   int
	buf      []byte
	state    atomix.Uint32
}

// ID returns the registry handle assigned at issue time.
func (r *Request) ID() uint64 {
	return r.id
}

// Op returns the operation name: tag-send, tag-recv, stream-send or
// stream-recv.
func (r *Request) Op() string {
	return r.op
}

// Tag returns the match tag. Zero for stream operations.
func (r *Request) Tag() Tag {
	return r.tag
}

// Completed reports whether the completion callback has been scheduled.
func (r *Request) Completed() bool {
	return r.state.Load() != 0
}

// Cancel asks the engine to abort the operation. If the request is still
// outstanding it completes with a canceled error; if completion has already
// been scheduled, Cancel is a no-op. The callback never fires twice.
func (r *Request) Cancel() {
	r.worker.submit(op{kind: opCancel, req: r})
}

// finish claims the single completion slot. Only the first claim wins;
// every later delivery attempt for the same request must be dropped.
func (r *Request) finish() bool {
	return r.state.Add(1) == 1
}
