package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"
	"taskhub/runtime"

	"github.com/go-playground/validator/v10"
)

const (
	TaskJoin     = "task:join"
	TaskLeave    = "task:leave"
	ProjectJoin  = "project:join"
	ProjectLeave = "project:leave"
	TypingStart  = "typing:start"
	TypingStop   = "typing:stop"
	Logout       = "logout"
	Ping         = "ping"
)

var validate = validator.New()

// InboundMessage is a frame sent by the client.
type InboundMessage struct {
	Event   string          `json:"event" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type idRequest struct {
	ID string `json:"id" validate:"required,max=128"`
}

type scopeRequest struct {
	Scope string `json:"scope" validate:"required"`
}

// Handle processes one inbound message of an Active connection.
// Rejected requests are answered with an error frame on the connection itself
// and do not return an error. ErrConnectionClosed is returned after logout, or
// when the connection was closed while the request was pending, so the
// transport stops reading.
func (g *Gateway) Handle(ctx context.Context, conn *runtime.Connection, msg InboundMessage) error {
	if conn.Phase() != domain.Active {
		return errors.ErrNotActive
	}
	if err := validate.Struct(msg); err != nil {
		g.reject(conn, msg.Event, fmt.Errorf("%w: %v", errors.ErrInvalidInbound, err))
		return nil
	}

	var err error
	switch msg.Event {
	case TaskJoin:
		err = g.join(conn, msg, domain.TaskScope)
	case TaskLeave:
		err = g.leave(conn, msg, domain.TaskScope)
	case ProjectJoin:
		err = g.joinProject(ctx, conn, msg)
	case ProjectLeave:
		err = g.leave(conn, msg, domain.ProjectScope)
	case TypingStart:
		err = g.typing(conn, msg, event.TypingStart)
	case TypingStop:
		err = g.typing(conn, msg, event.TypingStop)
	case Ping:
		err = g.reply(conn, event.Pong, nil)
	case Logout:
		g.Close(conn)
		return errors.ErrConnectionClosed
	default:
		err = fmt.Errorf("%w: %q", errors.ErrUnknownEvent, msg.Event)
	}
	if errors.Is(err, errors.ErrConnectionClosed) {
		return err
	}
	if err != nil {
		g.reject(conn, msg.Event, err)
	}
	return nil
}

func (g *Gateway) join(conn *runtime.Connection, msg InboundMessage, scopeOf func(string) domain.Scope) error {
	var req idRequest
	if err := decode(msg.Payload, &req); err != nil {
		return err
	}
	scope := scopeOf(req.ID)
	if !scope.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrInvalidScope, scope.String())
	}
	// Close may have run while a membership check was pending; joining under the
	// connection lock keeps a closed connection out of the topology.
	err := conn.WhileActive(func() { g.hub.Topology.Join(conn.ID, scope) })
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}
	g.log.Debug("Scope joined", "conn_id", conn.ID, "scope", scope.String())
	return g.reply(conn, event.ScopeJoined, event.ScopePayload{Scope: scope})
}

func (g *Gateway) leave(conn *runtime.Connection, msg InboundMessage, scopeOf func(string) domain.Scope) error {
	var req idRequest
	if err := decode(msg.Payload, &req); err != nil {
		return err
	}
	scope := scopeOf(req.ID)
	g.hub.Topology.Leave(conn.ID, scope)
	g.log.Debug("Scope left", "conn_id", conn.ID, "scope", scope.String())
	return g.reply(conn, event.ScopeLeft, event.ScopePayload{Scope: scope})
}

// joinProject re-checks the live membership table, which is how a client picks
// up a project it was added to after connecting.
func (g *Gateway) joinProject(ctx context.Context, conn *runtime.Connection, msg InboundMessage) error {
	var req idRequest
	if err := decode(msg.Payload, &req); err != nil {
		return err
	}
	identity, _ := conn.Identity()
	joinCtx, cancel := context.WithTimeout(ctx, g.joinTimeout)
	defer cancel()
	ok, err := g.resolver.CanJoinProject(joinCtx, identity, req.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: project:%s", errors.ErrForbiddenScope, req.ID)
	}
	return g.join(conn, msg, domain.ProjectScope)
}

// typing is relayed to the other members of a scope the sender belongs to.
func (g *Gateway) typing(conn *runtime.Connection, msg InboundMessage, name event.Name) error {
	var req scopeRequest
	if err := decode(msg.Payload, &req); err != nil {
		return err
	}
	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		return err
	}
	if scope.Kind == domain.UserScopeKind || !g.hub.Topology.IsMember(conn.ID, scope) {
		return fmt.Errorf("%w: %s", errors.ErrForbiddenScope, scope)
	}
	identity, _ := conn.Identity()
	evt, err := event.New(name, event.TypingPayload{
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
		Scope:       scope,
	})
	if err != nil {
		return err
	}
	g.hub.Router.Relay(scope, evt, conn.ID)
	return nil
}

func (g *Gateway) reply(conn *runtime.Connection, name event.Name, payload any) error {
	evt, err := event.New(name, payload)
	if err != nil {
		return err
	}
	if err := conn.Reply(evt); err != nil {
		g.log.Debug("Reply dropped", "conn_id", conn.ID, "event", name, "error", err)
	}
	return nil
}

func (g *Gateway) reject(conn *runtime.Connection, request string, cause error) {
	g.log.Debug("Inbound request rejected", "conn_id", conn.ID, "event", request, "error", cause)
	_ = g.reply(conn, event.Error, event.ErrorPayload{Request: request, Message: cause.Error()})
}

func decode(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", errors.ErrInvalidInbound)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInbound, err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInbound, err)
	}
	return nil
}
