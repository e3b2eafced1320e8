package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dkeye/callroom/internal/adapters/ai"
	"github.com/dkeye/callroom/internal/adapters/cache"
	router "github.com/dkeye/callroom/internal/adapters/http"
	sig "github.com/dkeye/callroom/internal/adapters/signal"
	"github.com/dkeye/callroom/internal/app"
	"github.com/dkeye/callroom/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	aiClient, err := ai.NewClient(ai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ChatModel:      cfg.OpenAI.ChatModel,
		VisionModel:    cfg.OpenAI.VisionModel,
		STTModel:       cfg.OpenAI.STTModel,
		TTSModel:       cfg.OpenAI.TTSModel,
		TTSVoice:       cfg.OpenAI.TTSVoice,
		DescribePrompt: cfg.OpenAI.DescribePrompt,
		MaxTokens:      cfg.OpenAI.MaxTokens,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init openai client")
	}
	describer, err := ai.NewCachedDescriber(aiClient, cfg.DescribeCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init describe cache")
	}
	policy, err := app.PolicyByName(cfg.Backpressure)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backpressure policy")
	}

	orch := &app.Orchestrator{
		Rooms:          app.NewRegistry(),
		Policy:         policy,
		Describer:      describer,
		AdapterTimeout: cfg.AdapterTimeout,
	}
	voice := &app.VoiceAssistant{
		Transcriber:    aiClient,
		Completer:      aiClient.For(ai.AgentVoice),
		Synthesizer:    aiClient,
		AdapterTimeout: cfg.AdapterTimeout,
	}

	svc := router.Services{
		Orch:      orch,
		Voice:     voice,
		Assistant: aiClient,
		Limiter:   sig.NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinInterval),
	}
	if cfg.RedisURL != "" {
		store, err := cache.NewRedisStore(ctx, cfg.RedisURL, "callroom:")
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, cache example disabled")
		} else {
			defer store.Close()
			svc.Cache = store
		}
	}

	r := router.SetupRouter(ctx, cfg, svc)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("call server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

// setupLogging applies the configured level and, when log_file is set, tees
// JSON logs into a rotated file next to the console output.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
