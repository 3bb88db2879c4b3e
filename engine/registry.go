package engine

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// EventType identifies a request lifecycle transition.
type EventType uint8

const (
	EventIssued EventType = iota
	EventCompleted
	EventFailed
	EventCanceled
)

// Event describes a request lifecycle transition.
type Event struct {
	Request *Request
	Type    EventType
}

// Observer receives request lifecycle events. OnRequest is called from
// engine goroutines and must not block.
type Observer interface {
	OnRequest(Event)
}

// Stats is a snapshot of a registry's aggregate counters.
type Stats struct {
	Issued    uint32
	Completed uint32
	Failed    uint32
	Canceled  uint32
}

// InFlight returns the number of requests issued but not yet finished.
func (s Stats) InFlight() uint32 {
	return s.Issued - s.Completed - s.Failed - s.Canceled
}

// Registry tracks in-flight requests for a worker and notifies observers
// of lifecycle transitions. Handles stay valid until the request finishes.
type Registry struct {
	reqs      map[uint64]*Request
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex

	ids       atomix.Uint32
	issued    atomix.Uint32
	completed atomix.Uint32
	failed    atomix.Uint32
	canceled  atomix.Uint32
}

// NewRegistry creates an empty request registry.
func NewRegistry() *Registry {
	return &Registry{
		reqs: make(map[uint64]*Request),
	}
}

// Subscribe adds an observer for request lifecycle events.
func (g *Registry) Subscribe(o Observer) {
	g.obsMu.Lock()
	defer g.obsMu.Unlock()
	g.observers = append(g.observers, o)
}

// Get retrieves an in-flight request by handle.
func (g *Registry) Get(id uint64) (*Request, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.reqs[id]
	return r, ok
}

// Len returns the number of registered in-flight requests.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.reqs)
}

// Stats returns a snapshot of the aggregate counters.
func (g *Registry) Stats() Stats {
	return Stats{
		Issued:    g.issued.Load(),
		Completed: g.completed.Load(),
		Failed:    g.failed.Load(),
		Canceled:  g.canceled.Load(),
	}
}

// pending snapshots every registered request that has not finished.
func (g *Registry) pending() []*Request {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Request, 0, len(g.reqs))
	for _, r := range g.reqs {
		out = append(out, r)
	}
	return out
}

// add registers a request and assigns its handle.
func (g *Registry) add(r *Request) {
	r.id = uint64(g.ids.Add(1))

	g.mu.Lock()
	g.reqs[r.id] = r
	g.mu.Unlock()

	g.issued.Add(1)
	g.notify(Event{Type: EventIssued, Request: r})
}

// finish removes a request and records its terminal event.
func (g *Registry) finish(r *Request, t EventType) {
	g.mu.Lock()
	delete(g.reqs, r.id)
	g.mu.Unlock()

	switch t {
	case EventCompleted:
		g.completed.Add(1)
	case EventFailed:
		g.failed.Add(1)
	case EventCanceled:
		g.canceled.Add(1)
	}
	g.notify(Event{Type: t, Request: r})
}

func (g *Registry) notify(ev Event) {
	g.obsMu.RLock()
	defer g.obsMu.RUnlock()
	for _, o := range g.observers {
		o.OnRequest(ev)
	}
}
