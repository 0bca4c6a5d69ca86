package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
)

var (
	ErrAuthFailure     = fmt.Errorf("authentication failed")
	ErrTokenMissing    = fmt.Errorf("token is missing")
	ErrTokenInvalid    = fmt.Errorf("token is invalid")
	ErrTokenExpired    = fmt.Errorf("token is expired")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrUserDeactivated = fmt.Errorf("user is deactivated")
	ErrTokenGeneration = fmt.Errorf("token generation failed")

	ErrMembershipFetch  = fmt.Errorf("membership fetch failed")
	ErrDeliveryFailure  = fmt.Errorf("delivery failed")
	ErrConnectionClosed = fmt.Errorf("connection closed")
	ErrNotActive        = fmt.Errorf("connection is not active")
	ErrIllegalPhase     = fmt.Errorf("illegal phase transition")

	ErrInvalidScope   = fmt.Errorf("invalid scope")
	ErrForbiddenScope = fmt.Errorf("scope is forbidden")
	ErrInvalidInbound = fmt.Errorf("invalid inbound message")
	ErrUnknownEvent   = fmt.Errorf("unknown event")
	ErrInvalidPayload = fmt.Errorf("invalid payload")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)

// Is and As forward to the standard library so callers importing this package
// under its default name keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// MapToHTTPStatus translates an error into the status code returned by the HTTP endpoints.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbiddenScope):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidScope),
		errors.Is(err, ErrInvalidInbound),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, ErrMembershipFetch):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// MapToCloseStatus translates a handshake failure into the websocket close code sent to the client.
func MapToCloseStatus(err error) websocket.StatusCode {
	switch {
	case err == nil:
		return websocket.StatusNormalClosure
	case errors.Is(err, ErrAuthFailure):
		return websocket.StatusPolicyViolation
	case errors.Is(err, ErrMembershipFetch):
		return websocket.StatusTryAgainLater
	case errors.Is(err, ErrConnectionClosed):
		return websocket.StatusGoingAway
	default:
		return websocket.StatusInternalError
	}
}
