package runtime

import (
	"fmt"
	"sync"
	"time"

	"taskhub/contract"
	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"

	"github.com/samber/lo"
)

// Connection is the typed per-connection record owned by the gateway.
// The identity is set once, after authentication, and never replaced.
type Connection struct {
	ID        domain.ConnectionID
	CreatedAt time.Time
	sink      contract.EventSink

	mu       sync.RWMutex
	phase    domain.Phase
	identity *domain.UserIdentity
}

func NewConnection(sink contract.EventSink) *Connection {
	return &Connection{
		ID:        domain.NewConnectionID(),
		CreatedAt: time.Now().UTC(),
		sink:      sink,
		phase:     domain.Connecting,
	}
}

func (c *Connection) Phase() domain.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Transition moves the connection to next, refusing illegal edges.
func (c *Connection) Transition(next domain.Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", errors.ErrIllegalPhase, c.phase, next)
	}
	c.phase = next
	return nil
}

// Identity returns the authenticated user, or false before authentication.
func (c *Connection) Identity() (domain.UserIdentity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return domain.UserIdentity{}, false
	}
	return *c.identity, true
}

// Authenticated attaches the identity; it only succeeds once, while Authenticating.
func (c *Connection) Authenticated(identity domain.UserIdentity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity != nil || c.phase != domain.Authenticating {
		return fmt.Errorf("%w: identity already resolved or wrong phase %s", errors.ErrIllegalPhase, c.phase)
	}
	c.identity = &identity
	return nil
}

// BeginClose takes the connection out of service exactly once.
// Authenticating connections go straight to Closed, every other live phase to
// Closing. It reports the phase it left and false if closing had already started.
func (c *Connection) BeginClose() (domain.Phase, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.phase
	switch {
	case prev.CanTransitionTo(domain.Closing):
		c.phase = domain.Closing
	case prev == domain.Authenticating:
		c.phase = domain.Closed
	default:
		return prev, false
	}
	return prev, true
}

// push hands the event to the sink only while the connection is Active.
// The phase is read under the same lock Transition takes, so a connection
// that has started Closing never receives anything afterwards.
func (c *Connection) push(evt event.DomainEvent) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.phase != domain.Active {
		return errors.ErrNotActive
	}
	return c.sink.Push(evt)
}

// WhileActive runs fn while holding the connection's read lock, so BeginClose
// cannot start until fn returns. It returns errors.ErrNotActive, without
// calling fn, once the connection has left Active.
func (c *Connection) WhileActive(fn func()) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.phase != domain.Active {
		return errors.ErrNotActive
	}
	fn()
	return nil
}

// Reply is the only path that bypasses the topology: it writes straight to the
// connection's own sink and carries responses to that connection's requests
// (acks, pong, error frames), never routed domain events.
func (c *Connection) Reply(evt event.DomainEvent) error {
	return c.sink.Push(evt)
}

// Registry is the directory of live connections, keyed by id.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.ConnectionID]*Connection
}

func NewRegistry() *Registry {
	return &Registry{connections: make(map[domain.ConnectionID]*Connection)}
}

func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[c.ID] = c
}

func (r *Registry) Get(id domain.ConnectionID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connections[id]
	return c, ok
}

func (r *Registry) Remove(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Snapshot returns every registered connection regardless of phase.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.connections)
}
