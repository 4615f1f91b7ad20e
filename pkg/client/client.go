// Package client is the dial-side counterpart of the session server: it
// connects to the /ws endpoint, mirrors the room's authoritative state
// from the event stream, and predicts the effect of local events with the
// same pure apply function the server uses.
package client

import (
	"context"
	"sync"

	"nhooyr.io/websocket"

	"github.com/Kinrany/mortal-treasures/pkg/world"
)

// Replica is one client's view of its room. The state it tracks is the
// fold of every event received from the server, which the server
// guarantees includes an echo of the client's own events.
type Replica struct {
	ws *websocket.Conn

	mu    sync.Mutex
	state world.World
}

// Dial connects to a session server. The returned replica holds the zero
// state until the server's initial snapshot arrives via Next.
func Dial(ctx context.Context, url string) (*Replica, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Replica{ws: ws}, nil
}

// Send delivers one event to the server. The local state is not touched;
// it advances when the authoritative echo comes back through Next.
func (r *Replica) Send(ctx context.Context, ev world.Event) error {
	b, err := world.Encode(ev)
	if err != nil {
		return err
	}
	return r.ws.Write(ctx, websocket.MessageText, b)
}

// Next blocks for the next event from the server, folds it into the
// replica state, and returns it.
func (r *Replica) Next(ctx context.Context) (world.Event, error) {
	_, data, err := r.ws.Read(ctx)
	if err != nil {
		return world.Event{}, err
	}
	ev, err := world.Decode(data)
	if err != nil {
		return world.Event{}, err
	}
	r.mu.Lock()
	r.state = r.state.Apply(ev)
	r.mu.Unlock()
	return ev, nil
}

// State returns the last confirmed state.
func (r *Replica) State() world.World {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Predict returns the state the server will reach after applying evs, on
// top of everything confirmed so far. Pure: the replica is unchanged.
func (r *Replica) Predict(evs ...world.Event) world.World {
	s := r.State()
	for _, ev := range evs {
		s = s.Apply(ev)
	}
	return s
}

// Close ends the session with a normal close frame.
func (r *Replica) Close() error {
	return r.ws.Close(websocket.StatusNormalClosure, "bye")
}
