package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Kinrany/mortal-treasures/pkg/metrics"
	"github.com/Kinrany/mortal-treasures/pkg/world"
)

// Maximum inbound frame size. Events are tiny; anything bigger is abuse.
const maxMessageSize = 4096

// Handler runs one session per accepted connection: admission into a
// room, the receive loop, and cleanup on disconnect.
type Handler struct {
	log *slog.Logger
	reg *Registry

	sendBuffer int
	timings    Timings
	upgrader   websocket.Upgrader
}

func NewHandler(log *slog.Logger, reg *Registry, sendBuffer int, t Timings) *Handler {
	return &Handler{
		log:        log,
		reg:        reg,
		sendBuffer: sendBuffer,
		timings:    t,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // the CORS layer owns origin policy
			},
		},
	}
}

// ServeWS upgrades the request, admits the peer into a room, pushes the
// room's current state as a full-state event, and then relays events
// until the receive side fails or the peer closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws.upgrade", "err", err)
		return
	}

	c := newConn(sock, h.sendBuffer, h.timings, h.log)
	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Inc()

	roomID := h.reg.Assign(c)
	c.log.Info("ws.joined", "room_id", roomID.String())

	// Every joiner starts from ground truth.
	state, err := h.reg.StateOf(roomID)
	if err != nil {
		// The room was just assigned; its absence is a bug, not a
		// recoverable condition for this request.
		c.log.Error("ws.join.state", "room_id", roomID.String(), "err", err)
		h.reg.Remove(c)
		c.close()
		metrics.ConnectionsActive.Dec()
		return
	}
	if err := c.Send(world.Replace(state)); err != nil {
		c.log.Warn("ws.join.push", "err", err)
	}

	h.readLoop(c, roomID)

	h.reg.Remove(c)
	c.close()
	metrics.ConnectionsActive.Dec()
	c.log.Info("ws.left", "room_id", roomID.String())
}

// readLoop decodes inbound frames into events, applies them to the
// room's state, and broadcasts each applied event to every occupant,
// sender included, so the server stays the single source of truth.
func (h *Handler) readLoop(c *Conn, roomID uuid.UUID) {
	sock := c.sock
	sock.SetReadLimit(maxMessageSize)
	_ = sock.SetReadDeadline(time.Now().Add(c.t.PongWait))
	sock.SetPongHandler(func(string) error {
		// Pongs we did not solicit land here too; they only refresh
		// the deadline and leave a debug line.
		c.log.Debug("ws.pong")
		return sock.SetReadDeadline(time.Now().Add(c.t.PongWait))
	})

	for {
		_, data, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("ws.read.error", "err", err)
			} else {
				c.log.Debug("ws.closed", "err", err)
			}
			return
		}

		ev, err := world.Decode(data)
		if err != nil {
			// Malformed input is dropped, not fatal, and no error
			// frame goes back to the peer.
			metrics.EventsRejected.Inc()
			c.log.Warn("ws.event.reject", "err", err)
			continue
		}

		peers, err := h.reg.ApplyAndGet(roomID, ev)
		if err != nil {
			c.log.Error("ws.apply", "room_id", roomID.String(), "err", err)
			return
		}
		metrics.EventsApplied.Inc()
		c.log.Debug("ws.event", "kind", string(ev.Kind), "peers", len(peers))

		frame, err := world.Encode(ev)
		if err != nil {
			c.log.Error("ws.event.encode", "err", err)
			continue
		}
		for _, p := range peers {
			if err := p.sendRaw(frame); err != nil {
				c.log.Debug("ws.broadcast.skip", "peer", p.ID().String(), "err", err)
			}
		}
	}
}
