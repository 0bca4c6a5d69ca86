package runtime

import (
	"sync"

	"taskhub/domain"

	"github.com/samber/lo"
)

type Set map[domain.ConnectionID]struct{}

type scopeSet map[domain.Scope]struct{}

// Topology records which connection is subscribed to which scope.
// A single RWMutex guards both indexes so that joins, leaves, teardown and
// reads are linearizable: no reader ever observes a half-removed connection.
type Topology struct {
	mu      sync.RWMutex
	members map[domain.Scope]Set             // scope -> connections
	scopes  map[domain.ConnectionID]scopeSet // connection -> scopes
}

func NewTopology() *Topology {
	return &Topology{
		members: make(map[domain.Scope]Set),
		scopes:  make(map[domain.ConnectionID]scopeSet),
	}
}

// Join subscribes a connection to a scope.
// Joining an already joined scope is a no-op; the boolean reports whether anything changed.
func (t *Topology) Join(connID domain.ConnectionID, scope domain.Scope) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.members[scope][connID]; ok {
		return false
	}
	if _, ok := t.members[scope]; !ok {
		t.members[scope] = make(Set)
	}
	t.members[scope][connID] = struct{}{}

	if _, ok := t.scopes[connID]; !ok {
		t.scopes[connID] = make(scopeSet)
	}
	t.scopes[connID][scope] = struct{}{}
	return true
}

// Leave is the inverse of Join. Leaving a scope the connection is not part of is a no-op.
func (t *Topology) Leave(connID domain.ConnectionID, scope domain.Scope) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(connID, scope)
}

func (t *Topology) leaveLocked(connID domain.ConnectionID, scope domain.Scope) bool {
	members, ok := t.members[scope]
	if !ok {
		return false
	}
	if _, ok := members[connID]; !ok {
		return false
	}
	delete(members, connID)
	// If no one is left in the scope, remove the entry entirely
	if len(members) == 0 {
		delete(t.members, scope)
	}
	if owned, ok := t.scopes[connID]; ok {
		delete(owned, scope)
		if len(owned) == 0 {
			delete(t.scopes, connID)
		}
	}
	return true
}

// RemoveConnection drops every membership of a connection under one lock.
// It returns the scopes the connection was part of.
func (t *Topology) RemoveConnection(connID domain.ConnectionID) []domain.Scope {
	t.mu.Lock()
	defer t.mu.Unlock()

	owned := lo.Keys(t.scopes[connID])
	for _, scope := range owned {
		t.leaveLocked(connID, scope)
	}
	delete(t.scopes, connID)
	return owned
}

func (t *Topology) MembersOf(scope domain.Scope) []domain.ConnectionID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Keys(t.members[scope])
}

// MembersOfAll returns the union of members of several scopes, each connection once.
func (t *Topology) MembersOfAll(scopes []domain.Scope) []domain.ConnectionID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	union := make(Set)
	for _, scope := range scopes {
		for connID := range t.members[scope] {
			union[connID] = struct{}{}
		}
	}
	return lo.Keys(union)
}

func (t *Topology) ScopesOf(connID domain.ConnectionID) []domain.Scope {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Keys(t.scopes[connID])
}

func (t *Topology) IsMember(connID domain.ConnectionID, scope domain.Scope) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[scope][connID]
	return ok
}

// ScopeCount is the number of scopes with at least one member.
func (t *Topology) ScopeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}
