package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Kinrany/mortal-treasures/pkg/metrics"
	"github.com/Kinrany/mortal-treasures/pkg/world"
)

// Timings groups the keepalive and write deadlines shared by every
// connection. PongWait must exceed PingPeriod or healthy peers get evicted.
type Timings struct {
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
}

var (
	errConnClosed  = errors.New("connection closed")
	errSendDropped = errors.New("send buffer full")
)

// Conn is the server-side handle for one connected peer. Identity is the
// generated id only; two handles are the same peer iff their ids match.
// The handle owns the outbound path: all writes to the socket go through
// its writeLoop, so concurrent senders never interleave frames.
type Conn struct {
	id   uuid.UUID
	sock *websocket.Conn
	log  *slog.Logger
	t    Timings

	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(sock *websocket.Conn, buf int, t Timings, log *slog.Logger) *Conn {
	c := &Conn{
		id:   uuid.New(),
		sock: sock,
		t:    t,
		out:  make(chan []byte, buf),
		done: make(chan struct{}),
	}
	c.log = log.With("conn_id", c.id.String())
	go c.writeLoop()
	return c
}

// ID returns the process-unique identifier assigned at construction.
func (c *Conn) ID() uuid.UUID { return c.id }

// Send queues one event for delivery. It never blocks: when the peer's
// buffer is full the event is dropped and counted, and the peer stays in
// its room. Removal is driven only by the receive side.
func (c *Conn) Send(ev world.Event) error {
	b, err := world.Encode(ev)
	if err != nil {
		return err
	}
	return c.sendRaw(b)
}

func (c *Conn) sendRaw(b []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	default:
		metrics.BroadcastDropped.Inc()
		c.log.Warn("ws.send.drop", "reason", "buffer full")
		return errSendDropped
	}
}

// writeLoop drains the outbound queue and keeps the peer alive with
// periodic pings. Write failures are logged, never fatal here; a dead
// socket surfaces on the read side within PongWait.
func (c *Conn) writeLoop() {
	ticker := time.NewTicker(c.t.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.t.WriteWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, b); err != nil {
				c.log.Warn("ws.send.error", "err", err)
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.t.WriteWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("ws.ping.error", "err", err)
			}
		case <-c.done:
			return
		}
	}
}

// close stops the writeLoop and closes the socket. Safe to call more
// than once.
func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}
