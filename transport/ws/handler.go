package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"taskhub/auth"
	"taskhub/errors"
	"taskhub/gateway"
	"taskhub/sink"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const inboundBuffer = 16

// serveWS runs one client connection: a reader goroutine, a writer goroutine
// draining the connection's sink, and this goroutine dispatching inbound frames.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if len(s.opts.AllowedOrigins) > 0 {
		opts.OriginPatterns = s.opts.AllowedOrigins
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.log.Debug("Websocket upgrade refused", "error", err)
		return
	}
	credential := auth.BearerFromRequest(r)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := sink.NewConnectionSink(s.opts.BufferSize)
	client := s.gateway.Open(outbound)

	// Reading starts before the handshake so a client going away cancels Joining.
	inbound := make(chan gateway.InboundMessage, inboundBuffer)
	go s.readLoop(ctx, cancel, conn, inbound)

	if err := s.gateway.Establish(ctx, client, credential); err != nil {
		outbound.Close()
		_ = conn.Close(errors.MapToCloseStatus(err), closeReason(err))
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, cancel, conn, outbound)
	}()

	status, reason := websocket.StatusNormalClosure, ""
loop:
	for {
		select {
		case <-ctx.Done():
			status = websocket.StatusGoingAway
			break loop
		case msg := <-inbound:
			if err := s.gateway.Handle(ctx, client, msg); errors.Is(err, errors.ErrConnectionClosed) {
				reason = "logout"
				break loop
			}
		}
	}

	s.gateway.Close(client)
	outbound.Close()
	<-writerDone
	_ = conn.Close(status, reason)
}

func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, inbound chan<- gateway.InboundMessage) {
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg gateway.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// An empty message is answered with an error frame by the gateway
			msg = gateway.InboundMessage{}
		}
		select {
		case inbound <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, outbound *sink.ConnectionSink) {
	for evt := range outbound.Events() {
		writeCtx, cancelWrite := context.WithTimeout(ctx, s.opts.WriteTimeout)
		err := wsjson.Write(writeCtx, conn, evt)
		cancelWrite()
		if err != nil {
			s.log.Debug("Websocket write failed", "event", evt.Name, "error", err)
			cancel()
			return
		}
	}
}

func closeReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrAuthFailure):
		return "unauthorized"
	case errors.Is(err, errors.ErrMembershipFetch):
		return "membership unavailable"
	default:
		return "closed"
	}
}
