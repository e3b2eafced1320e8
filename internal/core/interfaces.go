package core

import "context"

// Frame is a raw message payload as it travels over a connection.
type Frame []byte

type SessionID string

// Connection abstracts a bidirectional message transport.
// Owned by the adapter that accepted it; the adapter must Close() it.
// The room registry only keeps a non-owning reference while joined.
type Connection interface {
	ID() SessionID
	// TrySend queues f without blocking. It fails with ErrConnectionClosed
	// once Close was called and ErrBackpressure when the queue is full.
	TrySend(f Frame) error
	Close()
	Closed() bool
}

// Describer produces a text description of an image frame.
type Describer interface {
	Describe(ctx context.Context, frame string) (string, error)
}

// Transcriber converts encoded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Completer answers a single prompt, without conversation memory.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Synthesizer converts text to encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
