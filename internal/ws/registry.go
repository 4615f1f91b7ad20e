// Package ws implements the session server core: the room registry, the
// per-peer connection handle, and the per-connection session loop that
// turns inbound frames into state mutations and broadcasts.
package ws

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Kinrany/mortal-treasures/pkg/metrics"
	"github.com/Kinrany/mortal-treasures/pkg/world"
)

var ErrRoomNotFound = errors.New("room not found")

// room pairs one authoritative world with its occupant set. Only the
// registry touches it, always under the registry lock.
type room struct {
	id    uuid.UUID
	state world.World
	conns map[uuid.UUID]*Conn
}

// Registry owns every room and all membership. It is the only shared
// mutable state in the process; every read or write goes through its
// single lock, and critical sections are pure bookkeeping — the lock is
// never held across network I/O.
type Registry struct {
	log      *slog.Logger
	capacity int

	mu    sync.Mutex
	order []uuid.UUID // creation order, scanned first-fit by Assign
	rooms map[uuid.UUID]*room
}

func NewRegistry(capacity int, log *slog.Logger) *Registry {
	return &Registry{
		log:      log,
		capacity: capacity,
		rooms:    map[uuid.UUID]*room{},
	}
}

// Assign places c in the first room, in creation order, with a free slot,
// creating a fresh room with the default world when every room is full.
// Afterwards c is a member of exactly one room, and that room's occupancy
// is at most the capacity.
func (r *Registry) Assign(c *Conn) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		rm := r.rooms[id]
		if len(rm.conns) < r.capacity {
			rm.conns[c.ID()] = c
			return id
		}
	}

	rm := &room{
		id:    uuid.New(),
		state: world.New(),
		conns: map[uuid.UUID]*Conn{c.ID(): c},
	}
	r.rooms[rm.id] = rm
	r.order = append(r.order, rm.id)
	metrics.RoomsActive.Set(float64(len(r.rooms)))
	r.log.Info("room.created", "room_id", rm.id.String())
	return rm.id
}

// ApplyAndGet mutates the room's state and returns a snapshot of the
// occupant set, copied while still holding the lock so the caller can
// broadcast without racing membership changes. The mutation is fully
// applied before the lock is released.
func (r *Registry) ApplyAndGet(roomID uuid.UUID, ev world.Event) ([]*Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	rm.state = rm.state.Apply(ev)

	snapshot := make([]*Conn, 0, len(rm.conns))
	for _, c := range rm.conns {
		snapshot = append(snapshot, c)
	}
	return snapshot, nil
}

// Remove deletes c from whichever rooms contain it. Membership is unique
// by invariant, but removal scans every room so a violated invariant
// cannot strand the handle. No-op when c is not a member anywhere.
// Rooms are kept once empty; the first-fit scan reuses them.
func (r *Registry) Remove(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rm := range r.rooms {
		delete(rm.conns, c.ID())
	}
}

// StateOf returns the room's current state, used once per connection to
// push the initial snapshot to a newly admitted peer.
func (r *Registry) StateOf(roomID uuid.UUID) (world.World, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return world.World{}, ErrRoomNotFound
	}
	return rm.state, nil
}

// RoomCount reports how many rooms exist.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Occupancy reports the occupant count of a room, or 0 for unknown ids.
func (r *Registry) Occupancy(roomID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.rooms[roomID]; ok {
		return len(rm.conns)
	}
	return 0
}
