// Package gateway owns the lifecycle of client connections: it authenticates
// them, subscribes them to their initial scopes, tracks presence, and tears
// everything down when the transport goes away. It is transport agnostic; the
// websocket layer only feeds it credentials, inbound messages and close calls.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taskhub/contract"
	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"
	"taskhub/runtime"
)

type Gateway struct {
	log           *slog.Logger
	hub           *runtime.Hub
	authenticator contract.IAuthenticator
	resolver      contract.IMembershipResolver
	joinTimeout   time.Duration

	usersMu sync.Mutex
	users   map[string]*userLock
}

// userLock orders the presence transitions of one user with their announcements.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func New(
	log *slog.Logger,
	hub *runtime.Hub,
	authenticator contract.IAuthenticator,
	resolver contract.IMembershipResolver,
	joinTimeout time.Duration,
) *Gateway {
	return &Gateway{
		log:           log,
		hub:           hub,
		authenticator: authenticator,
		resolver:      resolver,
		joinTimeout:   joinTimeout,
		users:         make(map[string]*userLock),
	}
}

// lockUser serializes presence changes of userID. The returned func releases it.
// Announcements are sent while holding it; Router broadcasts never block.
func (g *Gateway) lockUser(userID string) func() {
	g.usersMu.Lock()
	lock, ok := g.users[userID]
	if !ok {
		lock = &userLock{}
		g.users[userID] = lock
	}
	lock.refs++
	g.usersMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		g.usersMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(g.users, userID)
		}
		g.usersMu.Unlock()
	}
}

// Open registers a new connection in the Connecting phase.
func (g *Gateway) Open(sink contract.EventSink) *runtime.Connection {
	conn := runtime.NewConnection(sink)
	g.hub.Registry.Add(conn)
	g.log.Debug("Connection opened", "conn_id", conn.ID)
	return conn
}

// Establish drives a connection from Connecting to Active.
// On an authentication failure the connection is Closed and never enters the
// topology. On a membership failure or a canceled ctx it is torn down.
func (g *Gateway) Establish(ctx context.Context, conn *runtime.Connection, credential string) error {
	if err := conn.Transition(domain.Authenticating); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}

	identity, err := g.authenticator.Authenticate(ctx, credential)
	if err != nil {
		g.log.Info("Authentication rejected", "conn_id", conn.ID, "error", err)
		g.Close(conn)
		return err
	}
	if err := conn.Authenticated(identity); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}
	if err := conn.Transition(domain.Joining); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}

	joinCtx, cancel := context.WithTimeout(ctx, g.joinTimeout)
	defer cancel()
	scopes, err := g.resolver.ScopesFor(joinCtx, identity)
	if err != nil {
		g.log.Warn("Membership resolution failed", "conn_id", conn.ID, "user_id", identity.ID, "error", err)
		g.Close(conn)
		return err
	}
	if ctx.Err() != nil {
		g.Close(conn)
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, ctx.Err())
	}

	for _, scope := range scopes {
		g.hub.Topology.Join(conn.ID, scope)
	}
	unlock := g.lockUser(identity.ID)
	defer unlock()
	online := g.hub.Presence.Connect(identity.ID, conn.ID)

	if err := conn.Transition(domain.Active); err != nil {
		// Close ran while we were joining. Under the user lock nobody has seen
		// this connection online, so undoing it needs no announcement.
		g.hub.Topology.RemoveConnection(conn.ID)
		g.hub.Presence.Disconnect(identity.ID, conn.ID)
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}

	g.log.Info("Connection active",
		"conn_id", conn.ID,
		"user_id", identity.ID,
		"scopes", len(scopes))
	if online == runtime.WentOnline {
		g.announce(identity, event.UserOnline, conn.ID)
	}
	return nil
}

// Close tears a connection down. It is idempotent and safe to call from any phase.
func (g *Gateway) Close(conn *runtime.Connection) {
	prev, ok := conn.BeginClose()
	if !ok {
		return
	}

	removed := g.hub.Topology.RemoveConnection(conn.ID)
	g.hub.Registry.Remove(conn.ID)

	identity, authenticated := conn.Identity()
	if !authenticated {
		g.finishClose(conn, prev)
		g.log.Info("Connection closed", "conn_id", conn.ID, "from", prev.String())
		return
	}

	unlock := g.lockUser(identity.ID)
	defer unlock()
	transition := g.hub.Presence.Disconnect(identity.ID, conn.ID)
	g.finishClose(conn, prev)

	g.log.Info("Connection closed",
		"conn_id", conn.ID,
		"user_id", identity.ID,
		"from", prev.String(),
		"scopes", len(removed))
	if transition == runtime.WentOffline {
		g.announce(identity, event.UserOffline, conn.ID)
	}
}

func (g *Gateway) finishClose(conn *runtime.Connection, prev domain.Phase) {
	if prev == domain.Authenticating {
		return
	}
	if err := conn.Transition(domain.Closed); err != nil {
		g.log.Error("Unexpected phase on close", "conn_id", conn.ID, "error", err)
	}
}

func (g *Gateway) announce(identity domain.UserIdentity, name event.Name, except domain.ConnectionID) {
	evt, err := event.New(name, event.PresencePayload{
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
		At:          time.Now().UTC(),
	})
	if err != nil {
		g.log.Error("Presence event encoding failed", "user_id", identity.ID, "error", err)
		return
	}
	g.hub.Router.BroadcastExcept(evt, except)
}
