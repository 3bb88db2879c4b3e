package main

import (
	"context"
	"time"

	"github.com/wippyai/comm-runtime/comm"
	"github.com/wippyai/comm-runtime/engine"
)

type config struct {
	msgs   int
	size   int
	stream bool
}

type result struct {
	elapsed time.Duration
	bytes   int64
	errs    int
}

func (r result) throughputMB() float64 {
	secs := r.elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(r.bytes) / (1024 * 1024) / secs
}

// bench owns one loopback pair and the scheduling context driving it.
type bench struct {
	loop *comm.Loop
	wa   *engine.Worker
	wb   *engine.Worker
	conn *comm.Conn
	peer *comm.Conn
	recv *comm.Worker
}

func newBench() *bench {
	wa := engine.NewWorker()
	wb := engine.NewWorker()
	ea, eb := engine.Pipe(wa, wb)

	loop := comm.NewLoop()
	return &bench{
		loop: loop,
		wa:   wa,
		wb:   wb,
		conn: comm.NewConn(ea, loop),
		peer: comm.NewConn(eb, loop),
		recv: comm.NewWorker(wb, loop),
	}
}

func (b *bench) stats() (engine.Stats, engine.Stats) {
	return b.wa.Requests().Stats(), b.wb.Requests().Stats()
}

func (b *bench) close() {
	b.loop.Close()
	b.wa.Close()
	b.wb.Close()
}

// run issues cfg.msgs transfers one at a time from a single goroutine, the
// cooperative-caller model the bridge is built for.
func (b *bench) run(cfg config) (result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	payload := make([]byte, cfg.size)
	for i := range payload {
		payload[i] = byte(i)
	}
	sink := make([]byte, cfg.size)

	start := time.Now()
	var res result
	for i := 0; i < cfg.msgs; i++ {
		var recvAw, sendAw *comm.Awaitable
		if cfg.stream {
			recvAw = b.peer.StreamRecv(sink, cfg.size, nil)
			sendAw = b.conn.StreamSend(payload, cfg.size, nil)
		} else {
			tag := engine.Tag(i)
			recvAw = b.recv.TagRecv(sink, cfg.size, tag, nil)
			sendAw = b.conn.TagSend(payload, cfg.size, tag, nil)
		}

		if err := sendAw.Await(ctx); err != nil {
			res.errs++
		}
		if err := recvAw.Await(ctx); err != nil {
			res.errs++
		} else {
			res.bytes += int64(cfg.size)
		}

		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
	res.elapsed = time.Since(start)
	return res, nil
}
