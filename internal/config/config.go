package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ChatModel      string `mapstructure:"chat_model"`
	VisionModel    string `mapstructure:"vision_model"`
	STTModel       string `mapstructure:"stt_model"`
	TTSModel       string `mapstructure:"tts_model"`
	TTSVoice       string `mapstructure:"tts_voice"`
	DescribePrompt string `mapstructure:"describe_prompt"`
	MaxTokens      int    `mapstructure:"max_tokens"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	SendBuffer    int    `mapstructure:"send_buffer"`
	InboundBuffer int    `mapstructure:"inbound_buffer"`
	Backpressure  string `mapstructure:"backpressure"`

	JoinLimit    int           `mapstructure:"join_limit"`
	JoinInterval time.Duration `mapstructure:"join_interval"`

	AdapterTimeout    time.Duration `mapstructure:"adapter_timeout"`
	DescribeCacheSize int           `mapstructure:"describe_cache_size"`

	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	RedisURL string `mapstructure:"redis_url"`

	OpenAI OpenAIConfig `mapstructure:"openai"`
}

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName if present, then applies defaults and environment
// overrides (openai.api_key <- OPENAI_API_KEY and so on).
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 4<<20)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")

	v.SetDefault("send_buffer", 64)
	v.SetDefault("inbound_buffer", 16)
	v.SetDefault("backpressure", "drop")

	v.SetDefault("join_limit", 10)
	v.SetDefault("join_interval", "1m")

	v.SetDefault("adapter_timeout", "30s")
	v.SetDefault("describe_cache_size", 256)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)

	v.SetDefault("redis_url", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.vision_model", "gpt-4o")
	v.SetDefault("openai.stt_model", "whisper-1")
	v.SetDefault("openai.tts_model", "tts-1")
	v.SetDefault("openai.tts_voice", "alloy")
	v.SetDefault("openai.describe_prompt", "Analyze this image and provide a brief description.")
	v.SetDefault("openai.max_tokens", 300)
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SendBuffer <= 0 || c.InboundBuffer <= 0 {
		return errors.New("send_buffer and inbound_buffer must be positive")
	}
	if c.AdapterTimeout < 0 || c.PingPeriod < 0 {
		return errors.New("adapter_timeout and ping_period must not be negative")
	}
	if c.JoinLimit <= 0 || c.JoinInterval <= 0 {
		return errors.New("join_limit and join_interval must be positive")
	}
	switch c.Backpressure {
	case "drop", "kick":
	default:
		return fmt.Errorf("unknown backpressure policy %q", c.Backpressure)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
