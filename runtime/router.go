package runtime

import (
	"log/slog"
	"sync/atomic"

	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"
)

// Envelope is what the router hands to a backplane when forwarding is enabled.
type Envelope struct {
	Scopes    []domain.Scope    `json:"scopes,omitempty"`
	Broadcast bool              `json:"broadcast,omitempty"`
	Event     event.DomainEvent `json:"event"`
}

type RouterStats struct {
	Delivered uint64
	Failed    uint64
	Forwarded uint64
	Dropped   uint64
}

// Router fans events out to the live members of a scope.
//
// It provides best-effort, at-most-once delivery with no acknowledgement,
// retry or persistence. A recipient that fails is logged and skipped, the
// others still receive the event, and nothing is reported to the caller.
// Router only ever sees an immutable event value and has no handle on the
// write that produced it.
//
// Router is safe for concurrent use by multiple goroutines.
type Router struct {
	log      *slog.Logger
	topology *Topology
	registry *Registry
	forward  chan Envelope

	delivered atomic.Uint64
	failed    atomic.Uint64
	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

func NewRouter(log *slog.Logger, topology *Topology, registry *Registry) *Router {
	return &Router{log: log, topology: topology, registry: registry}
}

// EnableForwarding makes every Deliver and Broadcast also emit an Envelope on the
// returned channel, for a backplane to publish. It must be called before the
// router is shared.
func (r *Router) EnableForwarding(bufferSize int) <-chan Envelope {
	r.forward = make(chan Envelope, bufferSize)
	return r.forward
}

// Deliver is fire-and-forget: members of scope at call time get evt, nobody else does.
func (r *Router) Deliver(scope domain.Scope, evt event.DomainEvent) {
	r.DeliverAll([]domain.Scope{scope}, evt)
}

// DeliverAll delivers evt once to every connection that belongs to at least one of scopes.
func (r *Router) DeliverAll(scopes []domain.Scope, evt event.DomainEvent) {
	if len(scopes) == 0 {
		return
	}
	r.DeliverLocal(scopes, evt)
	r.forwardRemote(Envelope{Scopes: scopes, Event: evt})
}

// Broadcast delivers evt to every Active connection of this process.
func (r *Router) Broadcast(evt event.DomainEvent) {
	r.BroadcastLocal(evt, "")
	r.forwardRemote(Envelope{Broadcast: true, Event: evt})
}

// BroadcastExcept is Broadcast with one connection left out, used for presence
// transitions that the connection itself triggered.
func (r *Router) BroadcastExcept(evt event.DomainEvent, except domain.ConnectionID) {
	r.BroadcastLocal(evt, except)
	r.forwardRemote(Envelope{Broadcast: true, Event: evt})
}

// Relay delivers evt to the members of scope except the sender.
func (r *Router) Relay(scope domain.Scope, evt event.DomainEvent, from domain.ConnectionID) {
	r.push(r.topology.MembersOf(scope), evt, from)
	r.forwardRemote(Envelope{Scopes: []domain.Scope{scope}, Event: evt})
}

// DeliverLocal resolves scopes against this process only and returns the number of recipients reached.
func (r *Router) DeliverLocal(scopes []domain.Scope, evt event.DomainEvent) int {
	return r.push(r.topology.MembersOfAll(scopes), evt, "")
}

// BroadcastLocal pushes evt to every Active connection of this process except one.
func (r *Router) BroadcastLocal(evt event.DomainEvent, except domain.ConnectionID) int {
	reached := 0
	for _, conn := range r.registry.Snapshot() {
		if conn.ID == except {
			continue
		}
		if r.pushTo(conn, evt) {
			reached++
		}
	}
	return reached
}

func (r *Router) push(ids []domain.ConnectionID, evt event.DomainEvent, except domain.ConnectionID) int {
	reached := 0
	for _, id := range ids {
		if id == except {
			continue
		}
		conn, ok := r.registry.Get(id)
		if !ok {
			continue
		}
		if r.pushTo(conn, evt) {
			reached++
		}
	}
	return reached
}

func (r *Router) pushTo(conn *Connection, evt event.DomainEvent) bool {
	err := conn.push(evt)
	switch {
	case err == nil:
		r.delivered.Add(1)
		return true
	case errors.Is(err, errors.ErrNotActive):
		return false
	default:
		r.failed.Add(1)
		r.log.Warn("Delivery failed",
			"conn_id", conn.ID,
			"event", evt.Name,
			"error", err)
		return false
	}
}

func (r *Router) forwardRemote(env Envelope) {
	if r.forward == nil {
		return
	}
	select {
	case r.forward <- env:
		r.forwarded.Add(1)
	default:
		r.dropped.Add(1)
		r.log.Warn("Backplane queue full, event not forwarded", "event", env.Event.Name)
	}
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		Delivered: r.delivered.Load(),
		Failed:    r.failed.Load(),
		Forwarded: r.forwarded.Load(),
		Dropped:   r.dropped.Load(),
	}
}
