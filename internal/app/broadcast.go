package app

import (
	"errors"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/dkeye/callroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

// PublishResult reports delivery stats/backpressure of one broadcast.
type PublishResult struct {
	SendTo  int
	Dropped []core.Connection
}

// Broadcast queues payload to every member of room except sender.
// A failing recipient never affects the others and nothing is returned as an
// error; the result is informational.
func (o *Orchestrator) Broadcast(room domain.RoomName, payload core.Frame, sender core.Connection) PublishResult {
	res := PublishResult{}
	for _, m := range o.Rooms.Members(room, sender) {
		err := m.TrySend(payload)
		switch {
		case err == nil:
			res.SendTo++
		case errors.Is(err, core.ErrConnectionClosed):
			// its own disconnect path deregisters it
		default:
			res.Dropped = append(res.Dropped, m)
		}
	}
	metrics.BroadcastDeliveries.Add(float64(res.SendTo))
	metrics.BroadcastDrops.Add(float64(len(res.Dropped)))
	log.Debug().Str("module", "app.broadcast").Str("room", string(room)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")

	if o.Policy == nil {
		return res
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().Str("module", "app.broadcast").Str("sid", string(slow.ID())).Str("room", string(room)).Msg("kicking slow member")
			left := o.Rooms.Leave(room, slow)
			slow.Close()
			if left {
				o.notifyLeft(room, slow)
			}
		case DropFrame, NoAction:
		}
	}
	return res
}
