// Package backplane relays routed events between hub processes over Redis pub/sub.
//
// Only deliveries travel across processes. Presence and topology stay local to
// each process, and every remote envelope is delivered to local members only,
// so an event is never bounced back onto the channel.
package backplane

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"taskhub/runtime"

	"github.com/redis/go-redis/v9"
)

type message struct {
	Origin string `json:"origin"`
	runtime.Envelope
}

// Relay is a supervised worker: it publishes what the local router forwards and
// delivers what other processes published.
type Relay struct {
	log       *slog.Logger
	rdb       *redis.Client
	router    *runtime.Router
	forwarded <-chan runtime.Envelope
	channel   string
	nodeID    string

	readyOnce sync.Once
	ready     chan struct{}
}

func NewRelay(
	log *slog.Logger,
	rdb *redis.Client,
	router *runtime.Router,
	forwarded <-chan runtime.Envelope,
	channel, nodeID string,
) *Relay {
	return &Relay{
		log:       log,
		rdb:       rdb,
		router:    router,
		forwarded: forwarded,
		channel:   channel,
		nodeID:    nodeID,
		ready:     make(chan struct{}),
	}
}

// Ready is closed once the first subscription is confirmed by Redis.
func (r *Relay) Ready() <-chan struct{} {
	return r.ready
}

func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so nothing published after Ready is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.readyOnce.Do(func() { close(r.ready) })
	r.log.Info("Backplane subscribed", "channel", r.channel, "node", r.nodeID)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-r.forwarded:
			r.publish(ctx, env)
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("backplane channel %s closed", r.channel)
			}
			r.receive(msg.Payload)
		}
	}
}

func (r *Relay) publish(ctx context.Context, env runtime.Envelope) {
	data, err := json.Marshal(message{Origin: r.nodeID, Envelope: env})
	if err != nil {
		r.log.Error("Backplane encoding failed", "event", env.Event.Name, "error", err)
		return
	}
	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		r.log.Warn("Backplane publish failed", "event", env.Event.Name, "error", err)
	}
}

func (r *Relay) receive(payload string) {
	var msg message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		r.log.Warn("Backplane message discarded", "error", err)
		return
	}
	if msg.Origin == r.nodeID {
		return
	}
	var reached int
	if msg.Broadcast {
		reached = r.router.BroadcastLocal(msg.Event, "")
	} else {
		reached = r.router.DeliverLocal(msg.Scopes, msg.Event)
	}
	r.log.Debug("Backplane event delivered",
		"event", msg.Event.Name,
		"origin", msg.Origin,
		"recipients", reached)
}
