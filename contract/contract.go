//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"taskhub/domain"
	"taskhub/domain/event"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// It is used for logging during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IAuthenticator resolves a bearer credential to a user identity.
// Any failure is reported as errors.ErrAuthFailure.
type IAuthenticator interface {
	Authenticate(ctx context.Context, credential string) (domain.UserIdentity, error)
}

// IUserDirectory is the read side of the external user table.
type IUserDirectory interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
}

// IMembershipStore is the read side of the external project membership table.
type IMembershipStore interface {
	ProjectsOf(ctx context.Context, userID string) ([]string, error)
	IsMember(ctx context.Context, userID, projectID string) (bool, error)
}

// IMembershipResolver turns durable memberships into the scopes a connection starts with.
// The result is a snapshot taken at query time.
type IMembershipResolver interface {
	ScopesFor(ctx context.Context, identity domain.UserIdentity) ([]domain.Scope, error)
	CanJoinProject(ctx context.Context, identity domain.UserIdentity, projectID string) (bool, error)
}

// EventSink is the outbound side of a single connection.
// Push must never block; a full or closed sink reports errors.ErrDeliveryFailure.
type EventSink interface {
	Push(evt event.DomainEvent) error
}

// IEventRouter is the entry point domain code calls once its write has committed.
// None of these methods block on transport writes or report delivery failures.
type IEventRouter interface {
	Deliver(scope domain.Scope, evt event.DomainEvent)
	DeliverAll(scopes []domain.Scope, evt event.DomainEvent)
	Broadcast(evt event.DomainEvent)
}
