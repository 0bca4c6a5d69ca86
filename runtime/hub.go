// Package runtime holds the shared in-process state of the hub: who is connected,
// which scopes each connection is subscribed to, and how events reach them.
// It contains no transport or storage code.
package runtime

import "log/slog"

// Hub bundles the state objects one process owns.
// It is created once in main and passed by handle to the gateway and to the
// publishing code; nothing in this package is global.
type Hub struct {
	Topology *Topology
	Presence *Presence
	Registry *Registry
	Router   *Router
}

func NewHub(log *slog.Logger) *Hub {
	topology := NewTopology()
	registry := NewRegistry()
	return &Hub{
		Topology: topology,
		Presence: NewPresence(),
		Registry: registry,
		Router:   NewRouter(log, topology, registry),
	}
}

type HubStats struct {
	Connections int
	OnlineUsers int
	Scopes      int
	Router      RouterStats
}

func (h *Hub) Stats() HubStats {
	return HubStats{
		Connections: h.Registry.Len(),
		OnlineUsers: len(h.Presence.OnlineUsers()),
		Scopes:      h.Topology.ScopeCount(),
		Router:      h.Router.Stats(),
	}
}
