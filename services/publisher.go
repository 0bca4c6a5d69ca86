package services

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"taskhub/contract"
	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"
)

// Target names the entities an event is about. Which ids are required depends
// on the event; UserID is the member, assignee, recipient or time tracker.
type Target struct {
	ProjectID string `json:"projectId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// Publisher is what domain code calls once a write has committed.
// It never reports delivery failures; an error only means the request itself is malformed.
type Publisher struct {
	log    *slog.Logger
	router contract.IEventRouter
}

func NewPublisher(log *slog.Logger, router contract.IEventRouter) *Publisher {
	return &Publisher{log: log, router: router}
}

// Route returns the scopes an event is delivered to, or broadcast=true when it goes to everyone.
func Route(name event.Name, target Target) (scopes []domain.Scope, broadcast bool, err error) {
	project := domain.ProjectScope(target.ProjectID)
	task := domain.TaskScope(target.TaskID)
	user := domain.UserScope(target.UserID)

	switch name {
	case event.ProjectCreate:
		return nil, true, nil
	case event.ProjectUpdate, event.ProjectDelete:
		scopes = []domain.Scope{project}
	case event.ProjectMemberAdd, event.ProjectMemberRemove:
		scopes = []domain.Scope{project, user}
	case event.TaskCreate, event.TaskUpdate, event.TaskDelete, event.TaskMove:
		scopes = []domain.Scope{project, task}
	case event.TaskAssign:
		scopes = []domain.Scope{project, task, user}
	case event.CommentNew, event.CommentUpdate, event.CommentDelete:
		scopes = []domain.Scope{task, project}
	case event.NotificationNew:
		scopes = []domain.Scope{user}
	case event.TimeStart, event.TimeStop, event.TimeUpdate:
		scopes = []domain.Scope{task, project, user}
	default:
		return nil, false, fmt.Errorf("%w: %q cannot be published", errors.ErrUnknownEvent, name)
	}

	for _, scope := range scopes {
		if !scope.Valid() {
			return nil, false, fmt.Errorf("%w: %s needs a valid %s id", errors.ErrInvalidPayload, name, scope.Kind)
		}
	}
	return scopes, false, nil
}

// Publish encodes payload once and hands the event to the router.
func (p *Publisher) Publish(name event.Name, target Target, payload any) error {
	scopes, broadcast, err := Route(name, target)
	if err != nil {
		return err
	}
	evt, err := event.New(name, payload)
	if err != nil {
		return err
	}
	p.dispatch(evt, scopes, broadcast)
	return nil
}

// PublishRaw is Publish for a payload that is already JSON, as received by the internal HTTP ingress.
func (p *Publisher) PublishRaw(name event.Name, target Target, payload json.RawMessage) error {
	scopes, broadcast, err := Route(name, target)
	if err != nil {
		return err
	}
	evt, err := event.FromRaw(name, payload)
	if err != nil {
		return err
	}
	p.dispatch(evt, scopes, broadcast)
	return nil
}

func (p *Publisher) dispatch(evt event.DomainEvent, scopes []domain.Scope, broadcast bool) {
	if broadcast {
		p.router.Broadcast(evt)
	} else {
		p.router.DeliverAll(scopes, evt)
	}
	p.log.Debug("Event published", "event", evt.Name, "scopes", len(scopes), "broadcast", broadcast)
}

func (p *Publisher) ProjectCreated(payload any) error {
	return p.Publish(event.ProjectCreate, Target{}, payload)
}

func (p *Publisher) ProjectUpdated(projectID string, payload any) error {
	return p.Publish(event.ProjectUpdate, Target{ProjectID: projectID}, payload)
}

func (p *Publisher) ProjectDeleted(projectID string, payload any) error {
	return p.Publish(event.ProjectDelete, Target{ProjectID: projectID}, payload)
}

func (p *Publisher) MemberAdded(projectID, memberID string, payload any) error {
	return p.Publish(event.ProjectMemberAdd, Target{ProjectID: projectID, UserID: memberID}, payload)
}

func (p *Publisher) MemberRemoved(projectID, memberID string, payload any) error {
	return p.Publish(event.ProjectMemberRemove, Target{ProjectID: projectID, UserID: memberID}, payload)
}

// TaskChanged covers task:create, task:update, task:delete and task:move.
func (p *Publisher) TaskChanged(name event.Name, projectID, taskID string, payload any) error {
	switch name {
	case event.TaskCreate, event.TaskUpdate, event.TaskDelete, event.TaskMove:
	default:
		return fmt.Errorf("%w: %q is not a task change", errors.ErrUnknownEvent, name)
	}
	return p.Publish(name, Target{ProjectID: projectID, TaskID: taskID}, payload)
}

func (p *Publisher) TaskAssigned(projectID, taskID, assigneeID string, payload any) error {
	return p.Publish(event.TaskAssign, Target{ProjectID: projectID, TaskID: taskID, UserID: assigneeID}, payload)
}

// CommentChanged covers comment:new, comment:update and comment:delete.
func (p *Publisher) CommentChanged(name event.Name, projectID, taskID string, payload any) error {
	switch name {
	case event.CommentNew, event.CommentUpdate, event.CommentDelete:
	default:
		return fmt.Errorf("%w: %q is not a comment change", errors.ErrUnknownEvent, name)
	}
	return p.Publish(name, Target{ProjectID: projectID, TaskID: taskID}, payload)
}

func (p *Publisher) Notify(userID string, payload any) error {
	return p.Publish(event.NotificationNew, Target{UserID: userID}, payload)
}

// TimeTracked covers time:start, time:stop and time:update.
func (p *Publisher) TimeTracked(name event.Name, projectID, taskID, userID string, payload any) error {
	switch name {
	case event.TimeStart, event.TimeStop, event.TimeUpdate:
	default:
		return fmt.Errorf("%w: %q is not a time log change", errors.ErrUnknownEvent, name)
	}
	return p.Publish(name, Target{ProjectID: projectID, TaskID: taskID, UserID: userID}, payload)
}
