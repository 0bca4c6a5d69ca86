package domain

import "github.com/google/uuid"

type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// Phase is the lifecycle position of a connection.
// Only Active connections are eligible for delivery.
type Phase int32

const (
	Connecting Phase = iota
	Authenticating
	Joining
	Active
	Closing
	Closed
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Authenticating:
		return "authenticating"
	case Joining:
		return "joining"
	case Active:
		return "active"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// CanTransitionTo reports whether next is a legal successor of p.
// An authentication failure jumps straight from Authenticating to Closed.
// Connecting and Joining may also move to Closing when the transport goes away early.
func (p Phase) CanTransitionTo(next Phase) bool {
	switch p {
	case Connecting:
		return next == Authenticating || next == Closing
	case Authenticating:
		return next == Joining || next == Closed
	case Joining:
		return next == Active || next == Closing
	case Active:
		return next == Closing
	case Closing:
		return next == Closed
	default:
		return false
	}
}
