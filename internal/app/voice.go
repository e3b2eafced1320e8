package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/rs/zerolog/log"
)

var errUnsupportedMessage = errors.New("unsupported message type")

// VoiceAssistant runs the voice chat flow: speech to text, completion, text
// to speech. Messages are independent; there is no conversation memory here.
type VoiceAssistant struct {
	Transcriber core.Transcriber
	Completer   core.Completer
	Synthesizer core.Synthesizer
	// AdapterTimeout bounds each stage separately; 0 disables it.
	AdapterTimeout time.Duration
}

// OnMessage handles one inbound message. Any stage failure is reported to c
// and ends processing of this message only.
func (v *VoiceAssistant) OnMessage(ctx context.Context, c core.Connection, data core.Frame) {
	logger := log.With().Str("module", "app.voice").Str("sid", string(c.ID())).Logger()

	audio, err := decodeAudio(data)
	if err != nil {
		logger.Warn().Err(err).Msg("decode audio message")
		v.fail(c, err)
		return
	}

	// transcribing
	text, aerr := callAdapter(ctx, "transcribe", v.AdapterTimeout, func(ctx context.Context) (string, error) {
		return v.Transcriber.Transcribe(ctx, audio)
	})
	if aerr != nil {
		logger.Warn().Err(aerr).Str("kind", aerr.Kind.String()).Msg("transcribe")
		v.fail(c, aerr)
		return
	}
	sendJSON(c, domain.VoiceMessage{Type: domain.MessageTranscription, Text: text})
	logger.Debug().Str("text", text).Msg("transcribed")

	// responding
	reply, aerr := callAdapter(ctx, "complete", v.AdapterTimeout, func(ctx context.Context) (string, error) {
		return v.Completer.Complete(ctx, text)
	})
	if aerr != nil {
		logger.Warn().Err(aerr).Str("kind", aerr.Kind.String()).Msg("complete")
		v.fail(c, aerr)
		return
	}

	// synthesizing
	speech, aerr := callAdapter(ctx, "synthesize", v.AdapterTimeout, func(ctx context.Context) ([]byte, error) {
		return v.Synthesizer.Synthesize(ctx, reply)
	})
	if aerr != nil {
		logger.Warn().Err(aerr).Str("kind", aerr.Kind.String()).Msg("synthesize")
		v.fail(c, aerr)
		return
	}

	sendJSON(c, domain.VoiceMessage{
		Type:  domain.MessageResponse,
		Text:  reply,
		Audio: base64.StdEncoding.EncodeToString(speech),
	})
	logger.Debug().Int("audio_bytes", len(speech)).Msg("response sent")
}

func (v *VoiceAssistant) fail(c core.Connection, err error) {
	sendJSON(c, domain.VoiceMessage{Type: domain.MessageError, Text: err.Error()})
}

func decodeAudio(data core.Frame) ([]byte, error) {
	var req domain.VoiceRequest
	if err := sonic.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("bad payload: %w", err)
	}
	if req.Type != domain.MessageAudio {
		return nil, fmt.Errorf("%w: %q", errUnsupportedMessage, req.Type)
	}
	audio, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, fmt.Errorf("bad audio encoding: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("empty audio")
	}
	return audio, nil
}
