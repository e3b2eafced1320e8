package signal

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/callroom/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// PumpConfig tunes the read and write pumps of a connection.
type PumpConfig struct {
	ReadLimit     int64
	PingPeriod    time.Duration
	SendBuffer    int
	InboundBuffer int
}

// WsConn is a WebSocket transport endpoint. It implements core.Connection.
type WsConn struct {
	id   core.SessionID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

var _ core.Connection = (*WsConn)(nil)

func NewWsConn(id core.SessionID, ws *websocket.Conn, sendBuffer int) *WsConn {
	return &WsConn{
		id:   id,
		conn: ws,
		send: make(chan core.Frame, sendBuffer),
	}
}

func (c *WsConn) ID() core.SessionID { return c.id }

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

func (c *WsConn) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Run pumps the connection until the socket closes or ctx is done. Inbound
// messages are handed to handle one at a time, in arrival order. The ctx
// passed to handle is cancelled as soon as the socket goes away, so slow
// adapter calls are abandoned. Run closes the connection before returning.
func (c *WsConn) Run(ctx context.Context, p PumpConfig, handle func(context.Context, core.Frame)) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.Close()
	}()

	inbound := make(chan core.Frame, p.InboundBuffer)
	go c.writePump(ctx, p.PingPeriod)
	go c.readPump(ctx, cancel, p, inbound)

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-inbound:
			if !ok {
				return
			}
			handle(ctx, f)
		}
	}
}

func (c *WsConn) writePump(ctx context.Context, pingPeriod time.Duration) {
	var ping <-chan time.Time
	if pingPeriod > 0 {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.write(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("writePump write error")
				c.Close()
				return
			}
		case <-ping:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ping error")
				c.Close()
				return
			}
		}
	}
}

func (c *WsConn) write(mt int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(mt, data)
}

func (c *WsConn) readPump(ctx context.Context, cancel context.CancelFunc, p PumpConfig, inbound chan<- core.Frame) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump closing")
		close(inbound)
		cancel()
	}()

	if p.ReadLimit > 0 {
		c.conn.SetReadLimit(p.ReadLimit)
	}
	if p.PingPeriod > 0 {
		pongWait := p.PingPeriod * 10 / 9
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("readPump read error")
			}
			return
		}
		// Payloads are text; binary messages are dropped.
		if mt != websocket.TextMessage {
			log.Warn().Str("module", "signal").Str("sid", string(c.id)).Int("bytes", len(data)).Msg("readPump dropped binary message")
			continue
		}
		select {
		case inbound <- data:
		case <-ctx.Done():
			return
		}
	}
}
