package app

import (
	"context"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Fake connection ---

type fakeConn struct {
	id core.SessionID

	mu      sync.Mutex
	sent    []core.Frame
	closed  bool
	sendErr error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: core.SessionID(id)}
}

func (c *fakeConn) ID() core.SessionID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) failSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

func (c *fakeConn) Sent() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Frame, len(c.sent))
	copy(out, c.sent)
	return out
}

func roomMessages(t *testing.T, c *fakeConn) []domain.RoomMessage {
	t.Helper()
	var out []domain.RoomMessage
	for _, f := range c.Sent() {
		var m domain.RoomMessage
		require.NoError(t, sonic.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func voiceMessages(t *testing.T, c *fakeConn) []domain.VoiceMessage {
	t.Helper()
	var out []domain.VoiceMessage
	for _, f := range c.Sent() {
		var m domain.VoiceMessage
		require.NoError(t, sonic.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

// --- Mock adapters ---

type MockDescriber struct{ mock.Mock }

func (m *MockDescriber) Describe(ctx context.Context, frame string) (string, error) {
	args := m.Called(ctx, frame)
	return args.String(0), args.Error(1)
}

type MockTranscriber struct{ mock.Mock }

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	args := m.Called(ctx, audio)
	return args.String(0), args.Error(1)
}

type MockCompleter struct{ mock.Mock }

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockSynthesizer struct{ mock.Mock }

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	args := m.Called(ctx, text)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
