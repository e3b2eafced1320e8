package signal

import (
	"net/http"

	"github.com/dkeye/callroom/internal/app"
	"github.com/gorilla/websocket"
)

// Controller accepts WebSocket connections for the video room and voice
// chat flows and pumps them into the app layer.
type Controller struct {
	Orch    *app.Orchestrator
	Voice   *app.VoiceAssistant
	Pump    PumpConfig
	Limiter *JoinRateLimiter
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}
