package runtime

import (
	"sort"
	"sync"
	"time"

	"taskhub/domain"

	"github.com/samber/lo"
)

// Transition is reported by Presence when a user crosses the 0<->1 connection edge.
type Transition int

const (
	NoTransition Transition = iota
	WentOnline
	WentOffline
)

// PresenceState is derived from the connection count, never stored on its own.
type PresenceState struct {
	UserID      string    `json:"userId"`
	Online      bool      `json:"online"`
	Connections int       `json:"connections"`
	Since       time.Time `json:"since,omitzero"`
}

// Presence keeps a strict per-user reference count keyed by connection id,
// so repeated connect or disconnect calls for the same connection cannot skew it.
type Presence struct {
	mu    sync.Mutex
	conns map[string]map[domain.ConnectionID]struct{}
	since map[string]time.Time // last transition per user
	now   func() time.Time
}

func NewPresence() *Presence {
	return &Presence{
		conns: make(map[string]map[domain.ConnectionID]struct{}),
		since: make(map[string]time.Time),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Connect counts a connection for a user and returns WentOnline on the 0->1 edge only.
func (p *Presence) Connect(userID string, connID domain.ConnectionID) Transition {
	p.mu.Lock()
	defer p.mu.Unlock()

	owned, ok := p.conns[userID]
	if !ok {
		owned = make(map[domain.ConnectionID]struct{})
		p.conns[userID] = owned
	}
	if _, dup := owned[connID]; dup {
		return NoTransition
	}
	owned[connID] = struct{}{}
	if len(owned) == 1 {
		p.since[userID] = p.now()
		return WentOnline
	}
	return NoTransition
}

// Disconnect uncounts a connection and returns WentOffline on the 1->0 edge only.
// Unknown pairs are ignored.
func (p *Presence) Disconnect(userID string, connID domain.ConnectionID) Transition {
	p.mu.Lock()
	defer p.mu.Unlock()

	owned, ok := p.conns[userID]
	if !ok {
		return NoTransition
	}
	if _, known := owned[connID]; !known {
		return NoTransition
	}
	delete(owned, connID)
	if len(owned) == 0 {
		delete(p.conns, userID)
		p.since[userID] = p.now()
		return WentOffline
	}
	return NoTransition
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns[userID]) > 0
}

func (p *Presence) Count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns[userID])
}

func (p *Presence) State(userID string) PresenceState {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.conns[userID])
	return PresenceState{
		UserID:      userID,
		Online:      n > 0,
		Connections: n,
		Since:       p.since[userID],
	}
}

// OnlineUsers returns the sorted ids of every user with at least one connection.
func (p *Presence) OnlineUsers() []string {
	p.mu.Lock()
	users := lo.Keys(p.conns)
	p.mu.Unlock()
	sort.Strings(users)
	return users
}
