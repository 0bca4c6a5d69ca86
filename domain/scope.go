// Package domain contains core concepts of the real-time hub.
// This file defines Scope, the unit of both subscription and delivery.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"fmt"
	"strings"

	"taskhub/errors"
)

type ScopeKind string

const (
	UserScopeKind    ScopeKind = "user"
	ProjectScopeKind ScopeKind = "project"
	TaskScopeKind    ScopeKind = "task"
)

// Scope is an addressable broadcast group such as "project:42".
// It is comparable and can be used as a map key.
type Scope struct {
	Kind ScopeKind
	ID   string
}

func UserScope(userID string) Scope       { return Scope{Kind: UserScopeKind, ID: userID} }
func ProjectScope(projectID string) Scope { return Scope{Kind: ProjectScopeKind, ID: projectID} }
func TaskScope(taskID string) Scope       { return Scope{Kind: TaskScopeKind, ID: taskID} }

func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID
}

func (s Scope) Valid() bool {
	switch s.Kind {
	case UserScopeKind, ProjectScopeKind, TaskScopeKind:
		return s.ID != "" && !strings.ContainsAny(s.ID, ": \t\n")
	default:
		return false
	}
}

// ParseScope reads the "<kind>:<id>" form.
func ParseScope(raw string) (Scope, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return Scope{}, fmt.Errorf("%w: %q", errors.ErrInvalidScope, raw)
	}
	scope := Scope{Kind: ScopeKind(kind), ID: id}
	if !scope.Valid() {
		return Scope{}, fmt.Errorf("%w: %q", errors.ErrInvalidScope, raw)
	}
	return scope, nil
}

func (s Scope) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidScope, s.String())
	}
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
