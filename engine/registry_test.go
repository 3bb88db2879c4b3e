package engine

import (
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnRequest(ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) snapshot() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.events...)
}

func TestRegistry_Lifecycle(t *testing.T) {
	_, wb, ea, _ := newLoopbackPair(t)

	obs := &recordingObserver{}
	wb.Requests().Subscribe(obs)

	got := make([]byte, 8)
	rcb, rch := recvCh()
	req := wb.TagRecv(got, len(got), 3, rcb)

	if got, ok := wb.Requests().Get(req.ID()); !ok || got != req {
		t.Error("in-flight request not retrievable by handle")
	}
	if n := wb.Requests().Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}

	scb, sch := sendCh()
	ea.TagSend(make([]byte, 8), 8, 3, scb)
	waitSend(t, sch)
	waitRecv(t, rch)

	if _, ok := wb.Requests().Get(req.ID()); ok {
		t.Error("finished request still registered")
	}

	events := obs.snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want issued+completed", len(events))
	}
	if events[0].Type != EventIssued || events[1].Type != EventCompleted {
		t.Errorf("event order = %v, %v", events[0].Type, events[1].Type)
	}
	if events[0].Request != req || events[1].Request != req {
		t.Error("events carry the wrong request")
	}
}

func TestRegistry_Stats(t *testing.T) {
	_, wb, ea, _ := newLoopbackPair(t)

	rcb, rch := recvCh()
	wb.TagRecv(make([]byte, 8), 8, 1, rcb)

	stats := wb.Requests().Stats()
	if stats.Issued != 1 || stats.InFlight() != 1 {
		t.Errorf("stats = %+v", stats)
	}

	canceled := wb.TagRecv(make([]byte, 8), 8, 2, func(error, int) {})
	canceled.Cancel()

	scb, sch := sendCh()
	ea.TagSend(make([]byte, 8), 8, 1, scb)
	waitSend(t, sch)
	waitRecv(t, rch)

	deadline := time.Now().Add(2 * time.Second)
	for {
		stats = wb.Requests().Stats()
		if stats.Completed == 1 && stats.Canceled == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("stats never settled: %+v", stats)
		}
		time.Sleep(time.Millisecond)
	}
	if stats.InFlight() != 0 {
		t.Errorf("InFlight = %d, want 0", stats.InFlight())
	}
}
