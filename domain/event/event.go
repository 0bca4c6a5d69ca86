package event

import (
	"encoding/json"
	"fmt"
	"time"

	"taskhub/domain"
	"taskhub/errors"
)

type Name string

const (
	UserOnline  Name = "user:online"
	UserOffline Name = "user:offline"

	ProjectCreate       Name = "project:create"
	ProjectUpdate       Name = "project:update"
	ProjectDelete       Name = "project:delete"
	ProjectMemberAdd    Name = "project:member:add"
	ProjectMemberRemove Name = "project:member:remove"

	TaskCreate Name = "task:create"
	TaskUpdate Name = "task:update"
	TaskDelete Name = "task:delete"
	TaskMove   Name = "task:move"
	TaskAssign Name = "task:assign"

	CommentNew    Name = "comment:new"
	CommentUpdate Name = "comment:update"
	CommentDelete Name = "comment:delete"

	NotificationNew Name = "notification:new"

	TimeStart  Name = "time:start"
	TimeStop   Name = "time:stop"
	TimeUpdate Name = "time:update"

	TypingStart Name = "typing:start"
	TypingStop  Name = "typing:stop"

	ScopeJoined Name = "scope:joined"
	ScopeLeft   Name = "scope:left"
	Pong        Name = "pong"
	Error       Name = "error"
)

// DomainEvent is a fully formed payload produced after a write has committed.
// The hub routes it as-is and never inspects or mutates Payload.
type DomainEvent struct {
	Name    Name            `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// New encodes payload once so every recipient gets the same bytes.
func New(name Name, payload any) (DomainEvent, error) {
	if name == "" {
		return DomainEvent{}, fmt.Errorf("%w: empty event name", errors.ErrInvalidPayload)
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return DomainEvent{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		raw = b
	}
	return DomainEvent{Name: name, Payload: raw, At: time.Now().UTC()}, nil
}

// FromRaw wraps an already encoded payload, typically received over HTTP or the backplane.
func FromRaw(name Name, payload json.RawMessage) (DomainEvent, error) {
	if name == "" {
		return DomainEvent{}, fmt.Errorf("%w: empty event name", errors.ErrInvalidPayload)
	}
	if len(payload) > 0 && !json.Valid(payload) {
		return DomainEvent{}, fmt.Errorf("%w: payload is not valid JSON", errors.ErrInvalidPayload)
	}
	cp := make(json.RawMessage, len(payload))
	copy(cp, payload)
	return DomainEvent{Name: name, Payload: cp, At: time.Now().UTC()}, nil
}

type PresencePayload struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	At          time.Time `json:"at"`
}

type TypingPayload struct {
	UserID      string       `json:"userId"`
	DisplayName string       `json:"displayName"`
	Scope       domain.Scope `json:"scope"`
}

type ScopePayload struct {
	Scope domain.Scope `json:"scope"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}
