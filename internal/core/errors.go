package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidState     = errors.New("invalid state")
	ErrConnectionClosed = errors.New("connection closed")
	ErrBackpressure     = errors.New("backpressure")
)

type AdapterKind int

const (
	KindTransport AdapterKind = iota
	KindTimeout
	KindInvalidInput
	KindProvider
	KindEmpty
)

func (k AdapterKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindInvalidInput:
		return "invalid_input"
	case KindProvider:
		return "provider"
	case KindEmpty:
		return "empty"
	default:
		return "transport"
	}
}

// AdapterError is the failure half of every adapter call.
// Flows recover it locally and report it to the originating connection.
type AdapterError struct {
	Op   string
	Kind AdapterKind
	Err  error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

func NewAdapterError(op string, kind AdapterKind, err error) *AdapterError {
	return &AdapterError{Op: op, Kind: kind, Err: err}
}

// AsAdapterError normalizes any adapter failure. Context expiry maps to
// KindTimeout, anything unknown to KindTransport.
func AsAdapterError(op string, err error) *AdapterError {
	if err == nil {
		return nil
	}
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewAdapterError(op, KindTimeout, err)
	}
	return NewAdapterError(op, KindTransport, err)
}
