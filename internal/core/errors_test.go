package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAdapterError(t *testing.T) {
	assert.Nil(t, AsAdapterError("op", nil))

	timeout := AsAdapterError("describe", fmt.Errorf("call: %w", context.DeadlineExceeded))
	require.NotNil(t, timeout)
	assert.Equal(t, KindTimeout, timeout.Kind)
	assert.Equal(t, "describe", timeout.Op)

	other := AsAdapterError("transcribe", errors.New("boom"))
	assert.Equal(t, KindTransport, other.Kind)
	assert.Equal(t, "transcribe: boom", other.Error())

	provider := NewAdapterError("complete", KindProvider, errors.New("rate limited"))
	wrapped := fmt.Errorf("stage: %w", provider)
	assert.Same(t, provider, AsAdapterError("ignored", wrapped))
}

func TestAdapterKindString(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "invalid_input", KindInvalidInput.String())
	assert.Equal(t, "empty", KindEmpty.String())
	assert.Equal(t, "transport", KindTransport.String())
}
