package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(d core.Describer) *Orchestrator {
	return &Orchestrator{
		Rooms:     NewRegistry(),
		Policy:    DropPolicy{},
		Describer: d,
	}
}

func TestOrchestrator_FrameScenario(t *testing.T) {
	d := new(MockDescriber)
	d.On("Describe", mock.Anything, "F1").Return("a cat on a sofa", nil)
	o := newTestOrchestrator(d)
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, o.Join("r1", a))
	require.NoError(t, o.Join("r1", b))

	o.OnFrame(context.Background(), "r1", a, core.Frame("F1"))

	assert.Equal(t, []core.Frame{core.Frame("F1")}, b.Sent())
	assert.Equal(t, []domain.RoomMessage{
		{Type: domain.MessageAIAnalysis, Content: "a cat on a sofa"},
	}, roomMessages(t, a))

	o.OnDisconnect("r1", b)

	assert.ElementsMatch(t, []core.SessionID{"a"}, ids(o.Rooms.Members("r1", nil)))
	msgs := roomMessages(t, a)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoomMessage{Type: domain.MessageSystem, Content: "A participant has left the call"}, msgs[1])
	d.AssertExpectations(t)
}

func TestOrchestrator_DescribeFailureStillBroadcasts(t *testing.T) {
	d := new(MockDescriber)
	d.On("Describe", mock.Anything, "F2").Return("", core.NewAdapterError("describe", core.KindProvider, errors.New("model overloaded")))
	o := newTestOrchestrator(d)
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, o.Join("r1", a))
	require.NoError(t, o.Join("r1", b))

	o.OnFrame(context.Background(), "r1", a, core.Frame("F2"))

	assert.Equal(t, []core.Frame{core.Frame("F2")}, b.Sent())
	msgs := roomMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageError, msgs[0].Type)
	assert.Equal(t, "Error processing frame: model overloaded", msgs[0].Content)
	assert.False(t, a.Closed())
	assert.Len(t, o.Rooms.Members("r1", nil), 2)
}

func TestOrchestrator_BroadcastFailureDoesNotAffectSender(t *testing.T) {
	d := new(MockDescriber)
	d.On("Describe", mock.Anything, "F3").Return("desc", nil)
	o := newTestOrchestrator(d)
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, o.Join("r1", a))
	require.NoError(t, o.Join("r1", b))
	b.failSends(core.ErrBackpressure)

	o.OnFrame(context.Background(), "r1", a, core.Frame("F3"))

	msgs := roomMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageAIAnalysis, msgs[0].Type)
	assert.False(t, a.Closed())
}

type slowDescriber struct{}

func (slowDescriber) Describe(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestOrchestrator_DescribeTimeout(t *testing.T) {
	o := newTestOrchestrator(slowDescriber{})
	o.AdapterTimeout = 20 * time.Millisecond
	a := newFakeConn("a")
	require.NoError(t, o.Join("r1", a))

	o.OnFrame(context.Background(), "r1", a, core.Frame("F4"))

	msgs := roomMessages(t, a)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageError, msgs[0].Type)
	assert.Contains(t, msgs[0].Content, "deadline exceeded")
}

func TestOrchestrator_SlowDescribeDoesNotBlockRegistry(t *testing.T) {
	o := newTestOrchestrator(slowDescriber{})
	a := newFakeConn("a")
	require.NoError(t, o.Join("r1", a))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.OnFrame(ctx, "r1", a, core.Frame("F5"))
	}()

	// registry mutations proceed while the describe call hangs
	b := newFakeConn("b")
	require.NoError(t, o.Join("r1", b))
	o.OnDisconnect("r1", b)
	assert.Len(t, o.Rooms.Members("r1", nil), 1)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnFrame did not return after cancellation")
	}
}

func TestOrchestrator_DisconnectIsIdempotent(t *testing.T) {
	o := newTestOrchestrator(new(MockDescriber))
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, o.Join("r1", a))
	require.NoError(t, o.Join("r1", b))

	o.OnDisconnect("r1", b)
	o.OnDisconnect("r1", b)

	assert.Len(t, roomMessages(t, a), 1)

	o.OnDisconnect("r1", a)
	_, ok := o.Rooms.Room("r1")
	assert.False(t, ok)
}

func TestOrchestrator_JoinClosed(t *testing.T) {
	o := newTestOrchestrator(new(MockDescriber))
	a := newFakeConn("a")
	a.Close()
	assert.ErrorIs(t, o.Join("r1", a), core.ErrInvalidState)
	assert.Empty(t, o.Rooms.List())
}
