// Package ws is the HTTP surface of the hub: the websocket endpoint clients
// connect to, read-only presence queries, and the internal ingress the CRUD
// layer posts committed events to.
package ws

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"taskhub/auth"
	"taskhub/contract"
	"taskhub/domain/event"
	"taskhub/errors"
	"taskhub/gateway"
	"taskhub/runtime"
	"taskhub/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxInternalBody = 1 << 20

var validate = validator.New()

type Options struct {
	BufferSize     int
	WriteTimeout   time.Duration
	AllowedOrigins []string
	InternalToken  string
}

type Server struct {
	log           *slog.Logger
	hub           *runtime.Hub
	gateway       *gateway.Gateway
	publisher     *services.Publisher
	authenticator contract.IAuthenticator
	opts          Options
}

func NewServer(
	log *slog.Logger,
	hub *runtime.Hub,
	gw *gateway.Gateway,
	publisher *services.Publisher,
	authenticator contract.IAuthenticator,
	opts Options,
) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Server{
		log:           log,
		hub:           hub,
		gateway:       gw,
		publisher:     publisher,
		authenticator: authenticator,
		opts:          opts,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/ws", s.serveWS)
	r.Post("/internal/events", s.requireInternalToken(s.publishEvent))

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.authenticator))
		r.Get("/presence", s.onlineUsers)
		r.Get("/presence/{userID}", s.presenceOf)
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	stats := s.hub.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": stats.Connections,
		"onlineUsers": stats.OnlineUsers,
	})
}

func (s *Server) onlineUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"online": s.hub.Presence.OnlineUsers()})
}

func (s *Server) presenceOf(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Presence.State(chi.URLParam(r, "userID")))
}

type internalEvent struct {
	Event   event.Name      `json:"event" validate:"required"`
	Target  services.Target `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// publishEvent answers 202 as soon as the event is handed to the router;
// delivery outcome is never reported back to the writer.
func (s *Server) publishEvent(w http.ResponseWriter, r *http.Request) {
	var body internalEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInternalBody)).Decode(&body); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}
	if err := s.publisher.PublishRaw(body.Event, body.Target, body.Payload); err != nil {
		s.log.Debug("Internal event rejected", "event", body.Event, "error", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) requireInternalToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if s.opts.InternalToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.InternalToken)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
}
