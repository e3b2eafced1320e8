package signal

import (
	"context"
	"net/http"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/dkeye/callroom/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const flowVideo = "video"

// HandleVideo serves one participant of a video room until it disconnects.
func (ctl *Controller) HandleVideo(ctx context.Context, c *gin.Context) {
	client := c.GetString("client_token")
	room, err := domain.ParseRoomName(c.Param("room"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(joinKey(c)) {
		log.Warn().Str("module", "signal").Str("client", client).Str("room", string(room)).Msg("join rate limited")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many join attempts"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := NewWsConn(core.SessionID(uuid.NewString()), ws, ctl.Pump.SendBuffer)
	logger := log.With().Str("module", "signal").Str("sid", string(conn.ID())).Str("client", client).Str("room", string(room)).Logger()

	if err := ctl.Orch.Join(room, conn); err != nil {
		logger.Error().Err(err).Msg("join room")
		conn.Close()
		return
	}
	metrics.RecordConnectionOpened(flowVideo)
	defer metrics.RecordConnectionClosed(flowVideo)
	logger.Info().Msg("video participant joined")

	conn.Run(ctx, ctl.Pump, func(ctx context.Context, f core.Frame) {
		ctl.Orch.OnFrame(ctx, room, conn, f)
	})

	ctl.Orch.OnDisconnect(room, conn)
	logger.Info().Msg("video participant disconnected")
}

// joinKey picks the rate limit key: the session token when the client
// presented one, its address otherwise.
func joinKey(c *gin.Context) string {
	if c.GetBool("client_token_known") {
		return "ct:" + c.GetString("client_token")
	}
	return "ip:" + c.ClientIP()
}
