package sink

import (
	"fmt"
	"sync"

	"taskhub/domain/event"
	"taskhub/errors"
)

// ConnectionSink is the bounded outbound queue of one connection.
// The router pushes into it, and the transport writer drains Events.
type ConnectionSink struct {
	mu     sync.RWMutex
	closed bool
	events chan event.DomainEvent
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ConnectionSink{events: make(chan event.DomainEvent, bufferSize)}
}

// Push is called by the router and never blocks.
// When the buffer is full the event is dropped for this recipient only.
func (s *ConnectionSink) Push(evt event.DomainEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("%w: sink closed", errors.ErrDeliveryFailure)
	}
	select {
	case s.events <- evt:
		return nil
	default:
		return fmt.Errorf("%w: outbound buffer full", errors.ErrDeliveryFailure)
	}
}

// Events is drained by the connection's single writer goroutine.
// The channel is closed once Close is called.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

func (s *ConnectionSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

func (s *ConnectionSink) Len() int {
	return len(s.events)
}
