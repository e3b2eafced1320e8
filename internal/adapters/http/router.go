package http

import (
	"context"

	"github.com/dkeye/callroom/internal/adapters/ai"
	"github.com/dkeye/callroom/internal/adapters/cache"
	"github.com/dkeye/callroom/internal/adapters/signal"
	"github.com/dkeye/callroom/internal/app"
	"github.com/dkeye/callroom/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	clientTokenKey  = "ct"
	requestIDHeader = "X-Request-ID"
)

// Asker answers one-off prompts under an agent.
type Asker interface {
	Ask(ctx context.Context, agent ai.Agent, prompt string) (string, error)
}

// Services are the collaborators the routes dispatch to. Cache may be nil.
type Services struct {
	Orch      *app.Orchestrator
	Voice     *app.VoiceAssistant
	Assistant Asker
	Cache     cache.Store
	Limiter   *signal.JoinRateLimiter
}

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives every browser a stable token kept in the
// cookie session; it identifies the client in logs and join rate limits.
// client_token_known reports whether the token came from the request cookie;
// a bare WebSocket dial never gets one because the 101 response drops Set-Cookie.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		c.Set("client_token_known", token != "")
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// RequestIDMiddleware propagates X-Request-ID or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	secret := cfg.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Str("module", "adapters.http").Msg("no session secret configured, using an ephemeral one")
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("CallroomSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := &signal.Controller{
		Orch:  svc.Orch,
		Voice: svc.Voice,
		Pump: signal.PumpConfig{
			ReadLimit:     cfg.ReadLimit,
			PingPeriod:    cfg.PingPeriod,
			SendBuffer:    cfg.SendBuffer,
			InboundBuffer: cfg.InboundBuffer,
		},
		Limiter: svc.Limiter,
	}
	ws := r.Group("/ws")
	ws.GET("/video/:room", func(c *gin.Context) {
		ctrl.HandleVideo(ctx, c)
	})
	ws.GET("/voice", func(c *gin.Context) {
		ctrl.HandleVoice(ctx, c)
	})

	h := &handlers{svc: svc}
	api := r.Group("/api")
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:name", h.getRoom)
	api.POST("/ask", h.ask)
	api.GET("/cache-example", h.cacheExample)

	return r
}
