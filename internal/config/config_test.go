package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 30*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, "drop", cfg.Backpressure)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.VisionModel)
	assert.Equal(t, 300, cfg.OpenAI.MaxTokens)
}

func TestLoadFile_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: debug
port: 9090
backpressure: kick
adapter_timeout: 5s
openai:
  chat_model: gpt-4
`), 0o600))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "kick", cfg.Backpressure)
	assert.Equal(t, 5*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, "gpt-4", cfg.OpenAI.ChatModel)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backpressure: explode\n"), 0o600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "backpressure")
}

func TestValidate(t *testing.T) {
	base := Config{Port: 80, SendBuffer: 1, InboundBuffer: 1, JoinLimit: 1, JoinInterval: time.Second, Backpressure: "drop"}
	assert.NoError(t, base.Validate())

	bad := base
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.SendBuffer = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.AdapterTimeout = -time.Second
	assert.Error(t, bad.Validate())
}
