package app

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

func encodeJSON(v any) (core.Frame, error) {
	return sonic.Marshal(v)
}

// sendJSON marshals v and queues it on c. Failures are logged only: the
// receiving side is either gone or will be handled by its own disconnect path.
func sendJSON(c core.Connection, v any) bool {
	b, err := encodeJSON(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.codec").Msg("sendJSON marshal")
		return false
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "app.codec").Str("sid", string(c.ID())).Msg("sendJSON dropped")
		return false
	}
	return true
}

// callAdapter bounds fn by timeout (0 means none) and records its outcome.
func callAdapter[T any](ctx context.Context, op string, timeout time.Duration, fn func(context.Context) (T, error)) (T, *core.AdapterError) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := fn(ctx)
	if err != nil {
		ae := core.AsAdapterError(op, err)
		metrics.ObserveAdapter(op, start, ae.Kind.String())
		return out, ae
	}
	metrics.ObserveAdapter(op, start, "ok")
	return out, nil
}
