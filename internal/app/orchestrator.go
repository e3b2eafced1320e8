package app

import (
	"context"
	"time"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator runs the video room flow: join, relay frames with their
// descriptions, and leave.
type Orchestrator struct {
	Rooms     *Registry
	Policy    Policy
	Describer core.Describer
	// AdapterTimeout bounds every Describe call; 0 disables it.
	AdapterTimeout time.Duration
}

func (o *Orchestrator) Join(room domain.RoomName, c core.Connection) error {
	if err := o.Rooms.Join(room, c); err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("sid", string(c.ID())).Str("room", string(room)).Msg("join rejected")
		return err
	}
	return nil
}

// OnFrame relays frame to the other members and answers the sender with a
// description of it. Every step is attempted; none of them fails the loop.
func (o *Orchestrator) OnFrame(ctx context.Context, room domain.RoomName, c core.Connection, frame core.Frame) {
	// Peers first so they never wait on the describer.
	o.Broadcast(room, frame, c)

	desc, aerr := callAdapter(ctx, "describe", o.AdapterTimeout, func(ctx context.Context) (string, error) {
		return o.Describer.Describe(ctx, string(frame))
	})
	if aerr != nil {
		log.Warn().Err(aerr).Str("module", "app.orch").Str("sid", string(c.ID())).Str("kind", aerr.Kind.String()).Msg("describe frame")
		sendJSON(c, domain.RoomMessage{Type: domain.MessageError, Content: "Error processing frame: " + aerr.Err.Error()})
		return
	}
	sendJSON(c, domain.RoomMessage{Type: domain.MessageAIAnalysis, Content: desc})
}

// OnDisconnect deregisters c and tells the remaining members. Calling it for
// a connection that already left (kicked, or a repeated disconnect) is a no-op.
func (o *Orchestrator) OnDisconnect(room domain.RoomName, c core.Connection) {
	if !o.Rooms.Leave(room, c) {
		return
	}
	o.notifyLeft(room, c)
}

// notifyLeft is best effort and bypasses the back-pressure policy.
func (o *Orchestrator) notifyLeft(room domain.RoomName, gone core.Connection) {
	notice, err := encodeJSON(domain.RoomMessage{Type: domain.MessageSystem, Content: domain.ParticipantLeftNotice})
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("encode leave notice")
		return
	}
	notified := 0
	for _, m := range o.Rooms.Members(room, gone) {
		if m.TrySend(notice) == nil {
			notified++
		}
	}
	log.Info().Str("module", "app.orch").Str("sid", string(gone.ID())).Str("room", string(room)).Int("notified", notified).Msg("participant left")
}
