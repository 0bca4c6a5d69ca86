package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"
	"taskhub/mocks"
	"taskhub/runtime"
	"taskhub/sink"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	gateway  *Gateway
	hub      *runtime.Hub
	store    *mocks.MockIMembershipStore
	projects map[string][]string
}

// newFixture wires a gateway whose credentials are the user ids themselves,
// "bad" being the only rejected credential.
func newFixture(t *testing.T) *fixture {
	return newFixtureWithLog(t, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func newFixtureWithLog(t *testing.T, log *slog.Logger) *fixture {
	ctrl := gomock.NewController(t)
	authenticator := mocks.NewMockIAuthenticator(ctrl)
	store := mocks.NewMockIMembershipStore(ctrl)
	f := &fixture{
		hub:      runtime.NewHub(logs.GetLoggerFromLevel(slog.LevelDebug)),
		store:    store,
		projects: map[string][]string{},
	}
	authenticator.EXPECT().Authenticate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, credential string) (domain.UserIdentity, error) {
			if credential == "bad" {
				return domain.UserIdentity{}, fmt.Errorf("%w: %w", errors.ErrAuthFailure, errors.ErrTokenInvalid)
			}
			return domain.UserIdentity{ID: credential, DisplayName: credential}, nil
		}).AnyTimes()
	store.EXPECT().ProjectsOf(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, userID string) ([]string, error) {
			return f.projects[userID], nil
		}).AnyTimes()
	f.gateway = New(
		log,
		f.hub,
		authenticator,
		runtime.NewMembershipResolver(store),
		time.Second,
	)
	return f
}

func (f *fixture) connect(t *testing.T, userID string) (*runtime.Connection, *sink.ConnectionSink) {
	t.Helper()
	s := sink.NewConnectionSink(32)
	conn := f.gateway.Open(s)
	require.NoError(t, f.gateway.Establish(context.Background(), conn, userID))
	return conn, s
}

// hookHandler runs fn once, the first time msg is logged, before passing the record on.
type hookHandler struct {
	slog.Handler
	mu  sync.Mutex
	msg string
	fn  func()
}

func (h *hookHandler) arm(msg string, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msg, h.fn = msg, fn
}

func (h *hookHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	var fn func()
	if h.fn != nil && record.Message == h.msg {
		fn, h.fn = h.fn, nil
	}
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
	return h.Handler.Handle(ctx, record)
}

func drain(s *sink.ConnectionSink) []event.DomainEvent {
	var out []event.DomainEvent
	for {
		select {
		case evt := <-s.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

func names(events []event.DomainEvent) []event.Name {
	out := make([]event.Name, 0, len(events))
	for _, evt := range events {
		out = append(out, evt.Name)
	}
	return out
}

func taskUpdate(t *testing.T) event.DomainEvent {
	evt, err := event.New(event.TaskUpdate, map[string]string{"taskId": "t1"})
	require.NoError(t, err)
	return evt
}

func TestGateway_Initial_Scopes_Are_Exact(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.projects["alice"] = []string{"P1", "P2", "P3"}

	conn, _ := f.connect(t, "alice")

	req.Equal(domain.Active, conn.Phase())
	req.ElementsMatch([]domain.Scope{
		domain.UserScope("alice"),
		domain.ProjectScope("P1"),
		domain.ProjectScope("P2"),
		domain.ProjectScope("P3"),
	}, f.hub.Topology.ScopesOf(conn.ID))
	req.True(f.hub.Presence.IsOnline("alice"))
}

func TestGateway_Scenario_Project_Isolation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given user A is a member of P1 only and reached Active
	f.projects["A"] = []string{"P1"}
	_, s := f.connect(t, "A")

	// When task:update is delivered on project:P1
	f.hub.Router.Deliver(domain.ProjectScope("P1"), taskUpdate(t))

	// Then A receives it
	req.Equal([]event.Name{event.TaskUpdate}, names(drain(s)))

	// When the same event is delivered on project:P2
	f.hub.Router.Deliver(domain.ProjectScope("P2"), taskUpdate(t))

	// Then A receives nothing
	req.Empty(drain(s))
}

func TestGateway_Scenario_Two_Tabs(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	_, observer := f.connect(t, "observer")

	// Given user A opens two tabs
	tab1, _ := f.connect(t, "A")
	tab2, _ := f.connect(t, "A")
	req.Equal([]event.Name{event.UserOnline}, names(drain(observer)))

	// When one tab is closed A is still online and nobody is told otherwise
	f.gateway.Close(tab1)
	req.True(f.hub.Presence.IsOnline("A"))
	req.Empty(drain(observer))

	// When the second tab is closed A goes offline exactly once
	f.gateway.Close(tab2)
	f.gateway.Close(tab2)
	req.False(f.hub.Presence.IsOnline("A"))
	req.Equal([]event.Name{event.UserOffline}, names(drain(observer)))
}

func TestGateway_Authenticating_Connection_Receives_Nothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := runtime.NewHub(logs.GetLoggerFromLevel(slog.LevelDebug))
	authenticator := mocks.NewMockIAuthenticator(ctrl)
	store := mocks.NewMockIMembershipStore(ctrl)
	gw := New(logs.GetLoggerFromLevel(slog.LevelDebug), hub, authenticator, runtime.NewMembershipResolver(store), time.Second)

	entered := make(chan struct{})
	release := make(chan struct{})
	authenticator.EXPECT().Authenticate(gomock.Any(), "token").
		DoAndReturn(func(context.Context, string) (domain.UserIdentity, error) {
			close(entered)
			<-release
			return domain.UserIdentity{ID: "A"}, nil
		})
	store.EXPECT().ProjectsOf(gomock.Any(), "A").Return([]string{"P1"}, nil)

	s := sink.NewConnectionSink(8)
	conn := gw.Open(s)
	done := make(chan error, 1)
	go func() { done <- gw.Establish(context.Background(), conn, "token") }()

	// Given the credential is being validated
	<-entered
	req.Equal(domain.Authenticating, conn.Phase())

	// When events target scopes the connection will later join
	hub.Router.Deliver(domain.UserScope("A"), taskUpdate(t))
	hub.Router.Deliver(domain.ProjectScope("P1"), taskUpdate(t))
	hub.Router.Broadcast(taskUpdate(t))

	// Then nothing was queued for it
	close(release)
	req.NoError(<-done)
	req.Equal(domain.Active, conn.Phase())
	req.Empty(drain(s))
}

func TestGateway_Auth_Failure_Never_Enters_Topology(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn := f.gateway.Open(sink.NewConnectionSink(1))

	err := f.gateway.Establish(context.Background(), conn, "bad")

	req.ErrorIs(err, errors.ErrAuthFailure)
	req.Equal(domain.Closed, conn.Phase())
	req.Empty(f.hub.Topology.ScopesOf(conn.ID))
	req.Zero(f.hub.Registry.Len())
}

func TestGateway_Membership_Failure_Tears_Down(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := runtime.NewHub(logs.GetLoggerFromLevel(slog.LevelDebug))
	authenticator := mocks.NewMockIAuthenticator(ctrl)
	store := mocks.NewMockIMembershipStore(ctrl)
	gw := New(logs.GetLoggerFromLevel(slog.LevelDebug), hub, authenticator, runtime.NewMembershipResolver(store), time.Second)

	authenticator.EXPECT().Authenticate(gomock.Any(), "token").Return(domain.UserIdentity{ID: "A"}, nil)
	store.EXPECT().ProjectsOf(gomock.Any(), "A").Return(nil, fmt.Errorf("database is locked"))

	conn := gw.Open(sink.NewConnectionSink(1))
	err := gw.Establish(context.Background(), conn, "token")

	req.ErrorIs(err, errors.ErrMembershipFetch)
	req.Equal(domain.Closed, conn.Phase())
	req.Zero(hub.Topology.ScopeCount())
	req.False(hub.Presence.IsOnline("A"))
}

func TestGateway_Canceled_While_Joining(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := runtime.NewHub(logs.GetLoggerFromLevel(slog.LevelDebug))
	authenticator := mocks.NewMockIAuthenticator(ctrl)
	store := mocks.NewMockIMembershipStore(ctrl)
	gw := New(logs.GetLoggerFromLevel(slog.LevelDebug), hub, authenticator, runtime.NewMembershipResolver(store), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	authenticator.EXPECT().Authenticate(gomock.Any(), "token").Return(domain.UserIdentity{ID: "A"}, nil)
	store.EXPECT().ProjectsOf(gomock.Any(), "A").
		DoAndReturn(func(context.Context, string) ([]string, error) {
			// The transport goes away while memberships are loading
			cancel()
			return []string{"P1"}, nil
		})

	conn := gw.Open(sink.NewConnectionSink(1))
	err := gw.Establish(ctx, conn, "token")

	req.ErrorIs(err, errors.ErrConnectionClosed)
	req.Equal(domain.Closed, conn.Phase())
	req.Zero(hub.Topology.ScopeCount())
	req.False(hub.Presence.IsOnline("A"))
}

func TestGateway_Close_Is_Complete(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.projects["alice"] = []string{"P1", "P2"}
	conn, s := f.connect(t, "alice")
	req.NoError(f.gateway.Handle(context.Background(), conn, InboundMessage{
		Event:   TaskJoin,
		Payload: json.RawMessage(`{"id":"t1"}`),
	}))

	f.gateway.Close(conn)

	req.Equal(domain.Closed, conn.Phase())
	for _, scope := range []domain.Scope{
		domain.UserScope("alice"),
		domain.ProjectScope("P1"),
		domain.ProjectScope("P2"),
		domain.TaskScope("t1"),
	} {
		req.NotContains(f.hub.Topology.MembersOf(scope), conn.ID)
	}
	req.Zero(f.hub.Presence.Count("alice"))
	_, ok := f.hub.Registry.Get(conn.ID)
	req.False(ok)

	// A closed connection gets nothing anymore
	drain(s)
	f.hub.Router.Broadcast(taskUpdate(t))
	req.Empty(drain(s))
}

func TestGateway_Presence_Tab_Closing_While_Another_Opens(t *testing.T) {
	req := require.New(t)
	hook := &hookHandler{Handler: logs.GetLoggerFromLevel(slog.LevelDebug).Handler()}
	f := newFixtureWithLog(t, slog.New(hook))
	_, observer := f.connect(t, "observer")
	tab1, _ := f.connect(t, "A")
	drain(observer)

	// Given a second tab of A starts connecting right after the first one went offline
	tab2 := f.gateway.Open(sink.NewConnectionSink(8))
	opened := make(chan error, 1)
	hook.arm("Connection closed", func() {
		go func() { opened <- f.gateway.Establish(context.Background(), tab2, "A") }()
		time.Sleep(20 * time.Millisecond)
	})

	// When the first tab closes
	f.gateway.Close(tab1)
	req.NoError(<-opened)

	// Then observers see offline then online, matching the final state
	req.Equal(domain.Active, tab2.Phase())
	req.True(f.hub.Presence.IsOnline("A"))
	req.Equal([]event.Name{event.UserOffline, event.UserOnline}, names(drain(observer)))
}

func TestGateway_Presence_Close_Right_After_Activation(t *testing.T) {
	req := require.New(t)
	hook := &hookHandler{Handler: logs.GetLoggerFromLevel(slog.LevelDebug).Handler()}
	f := newFixtureWithLog(t, slog.New(hook))
	_, observer := f.connect(t, "observer")

	// Given the connection of A is closed as soon as it becomes Active
	conn := f.gateway.Open(sink.NewConnectionSink(8))
	closed := make(chan struct{})
	hook.arm("Connection active", func() {
		go func() {
			defer close(closed)
			f.gateway.Close(conn)
		}()
		time.Sleep(20 * time.Millisecond)
	})

	// When it is established
	req.NoError(f.gateway.Establish(context.Background(), conn, "A"))
	<-closed

	// Then online is announced before offline and A ends offline
	req.Equal(domain.Closed, conn.Phase())
	req.False(f.hub.Presence.IsOnline("A"))
	req.Equal([]event.Name{event.UserOnline, event.UserOffline}, names(drain(observer)))
}

func TestGateway_Presence_Concurrent_Tabs_Announce_Consistently(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	observer := sink.NewConnectionSink(4096)
	observerConn := f.gateway.Open(observer)
	req.NoError(f.gateway.Establish(context.Background(), observerConn, "observer"))

	// Given many tabs of A opening and closing on their own goroutines
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := f.gateway.Open(sink.NewConnectionSink(64))
			if err := f.gateway.Establish(context.Background(), conn, "A"); err != nil {
				return
			}
			f.gateway.Close(conn)
		}()
	}
	wg.Wait()

	// Then announcements strictly alternate, start online and end offline
	var presence []event.Name
	for _, name := range names(drain(observer)) {
		if name == event.UserOnline || name == event.UserOffline {
			presence = append(presence, name)
		}
	}
	req.NotEmpty(presence)
	for i, name := range presence {
		if i%2 == 0 {
			req.Equal(event.UserOnline, name)
		} else {
			req.Equal(event.UserOffline, name)
		}
	}
	req.Equal(event.UserOffline, presence[len(presence)-1])
	req.False(f.hub.Presence.IsOnline("A"))
}
