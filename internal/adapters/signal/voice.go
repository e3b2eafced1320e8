package signal

import (
	"context"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const flowVoice = "voice"

// HandleVoice serves one voice chat connection. There is no room.
func (ctl *Controller) HandleVoice(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := NewWsConn(core.SessionID(uuid.NewString()), ws, ctl.Pump.SendBuffer)
	metrics.RecordConnectionOpened(flowVoice)
	defer metrics.RecordConnectionClosed(flowVoice)
	log.Info().Str("module", "signal").Str("sid", string(conn.ID())).Str("client", c.GetString("client_token")).Msg("voice session opened")

	conn.Run(ctx, ctl.Pump, func(ctx context.Context, f core.Frame) {
		ctl.Voice.OnMessage(ctx, conn, f)
	})

	log.Info().Str("module", "signal").Str("sid", string(conn.ID())).Msg("voice session closed")
}
