package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"taskhub/domain"
	"taskhub/domain/event"
	"taskhub/errors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func message(name, payload string) InboundMessage {
	msg := InboundMessage{Event: name}
	if payload != "" {
		msg.Payload = json.RawMessage(payload)
	}
	return msg
}

func TestHandle_Task_Join_And_Leave(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn, s := f.connect(t, "alice")
	ctx := context.Background()

	// When the client subscribes to a task twice
	req.NoError(f.gateway.Handle(ctx, conn, message(TaskJoin, `{"id":"t1"}`)))
	req.NoError(f.gateway.Handle(ctx, conn, message(TaskJoin, `{"id":"t1"}`)))

	// Then it is a single member of task:t1 and each request is acknowledged
	req.Equal([]domain.ConnectionID{conn.ID}, f.hub.Topology.MembersOf(domain.TaskScope("t1")))
	acks := drain(s)
	req.Equal([]event.Name{event.ScopeJoined, event.ScopeJoined}, names(acks))
	req.JSONEq(`{"scope":"task:t1"}`, string(acks[0].Payload))

	// When it leaves
	req.NoError(f.gateway.Handle(ctx, conn, message(TaskLeave, `{"id":"t1"}`)))
	req.Empty(f.hub.Topology.MembersOf(domain.TaskScope("t1")))
	req.Equal([]event.Name{event.ScopeLeft}, names(drain(s)))
}

func TestHandle_Project_Join_Is_Checked(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn, s := f.connect(t, "alice")
	ctx := context.Background()

	f.store.EXPECT().IsMember(gomock.Any(), "alice", "P7").Return(true, nil)
	f.store.EXPECT().IsMember(gomock.Any(), "alice", "P9").Return(false, nil)

	// When alice was added to P7 after connecting and re-subscribes
	req.NoError(f.gateway.Handle(ctx, conn, message(ProjectJoin, `{"id":"P7"}`)))
	req.True(f.hub.Topology.IsMember(conn.ID, domain.ProjectScope("P7")))
	req.Equal([]event.Name{event.ScopeJoined}, names(drain(s)))

	// When she tries a project she does not belong to
	req.NoError(f.gateway.Handle(ctx, conn, message(ProjectJoin, `{"id":"P9"}`)))
	req.False(f.hub.Topology.IsMember(conn.ID, domain.ProjectScope("P9")))
	frames := drain(s)
	req.Equal([]event.Name{event.Error}, names(frames))

	var payload event.ErrorPayload
	req.NoError(json.Unmarshal(frames[0].Payload, &payload))
	req.Equal(ProjectJoin, payload.Request)
	req.Contains(payload.Message, errors.ErrForbiddenScope.Error())
}

func TestHandle_Typing_Is_Relayed_To_Other_Members(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.projects["alice"] = []string{"P1"}
	f.projects["bob"] = []string{"P1"}
	alice, aliceSink := f.connect(t, "alice")
	_, bobSink := f.connect(t, "bob")
	_, carolSink := f.connect(t, "carol")
	drain(aliceSink)
	drain(bobSink)
	drain(carolSink)

	req.NoError(f.gateway.Handle(context.Background(), alice, message(TypingStart, `{"scope":"project:P1"}`)))

	// Then bob sees alice typing, alice and carol see nothing
	relayed := drain(bobSink)
	req.Equal([]event.Name{event.TypingStart}, names(relayed))
	req.JSONEq(`{"userId":"alice","displayName":"alice","scope":"project:P1"}`, string(relayed[0].Payload))
	req.Empty(drain(aliceSink))
	req.Empty(drain(carolSink))
}

func TestHandle_Typing_Requires_Membership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.projects["bob"] = []string{"P1"}
	mallory, mallorySink := f.connect(t, "mallory")
	_, bobSink := f.connect(t, "bob")
	drain(bobSink)
	drain(mallorySink)

	for _, payload := range []string{
		`{"scope":"project:P1"}`,
		`{"scope":"user:bob"}`,
		`{"scope":"nonsense"}`,
		`{}`,
	} {
		req.NoError(f.gateway.Handle(context.Background(), mallory, message(TypingStop, payload)))
	}

	req.Empty(drain(bobSink))
	req.Equal([]event.Name{event.Error, event.Error, event.Error, event.Error}, names(drain(mallorySink)))
}

func TestHandle_Ping_Unknown_And_Invalid(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn, s := f.connect(t, "alice")
	ctx := context.Background()

	req.NoError(f.gateway.Handle(ctx, conn, message(Ping, "")))
	req.NoError(f.gateway.Handle(ctx, conn, message("task:explode", `{}`)))
	req.NoError(f.gateway.Handle(ctx, conn, message("", "")))
	req.NoError(f.gateway.Handle(ctx, conn, message(TaskJoin, `{"id":""}`)))
	req.NoError(f.gateway.Handle(ctx, conn, message(TaskJoin, `{"id":"a:b"}`)))

	req.Equal([]event.Name{event.Pong, event.Error, event.Error, event.Error, event.Error}, names(drain(s)))
	req.Equal([]domain.Scope{domain.UserScope("alice")}, f.hub.Topology.ScopesOf(conn.ID))
}

func TestHandle_Logout_Closes_Connection(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn, _ := f.connect(t, "alice")

	err := f.gateway.Handle(context.Background(), conn, message(Logout, ""))

	req.ErrorIs(err, errors.ErrConnectionClosed)
	req.Equal(domain.Closed, conn.Phase())
	req.False(f.hub.Presence.IsOnline("alice"))

	// Later frames from a closed connection are refused
	req.ErrorIs(f.gateway.Handle(context.Background(), conn, message(Ping, "")), errors.ErrNotActive)
}

func TestHandle_Project_Join_After_Close_Leaves_No_Membership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	conn, _ := f.connect(t, "alice")

	// Given a membership check that blocks until released
	checking := make(chan struct{})
	release := make(chan struct{})
	f.store.EXPECT().IsMember(gomock.Any(), "alice", "P7").
		DoAndReturn(func(context.Context, string, string) (bool, error) {
			close(checking)
			<-release
			return true, nil
		})

	done := make(chan error, 1)
	go func() {
		done <- f.gateway.Handle(context.Background(), conn, message(ProjectJoin, `{"id":"P7"}`))
	}()

	// When the connection closes while the check is pending
	<-checking
	f.gateway.Close(conn)
	close(release)

	// Then the late join is refused and nothing of the connection remains
	req.ErrorIs(<-done, errors.ErrConnectionClosed)
	req.Equal(domain.Closed, conn.Phase())
	req.Empty(f.hub.Topology.ScopesOf(conn.ID))
	req.Zero(f.hub.Topology.ScopeCount())
	_, registered := f.hub.Registry.Get(conn.ID)
	req.False(registered)
}
