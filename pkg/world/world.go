// Package world holds the authoritative state of a single world and the
// closed set of events that mutate it.
//
// Apply is pure and deterministic: the server applies events under the
// registry lock, and clients may apply the same events locally to predict
// the next state before the authoritative echo arrives. Both sides must
// agree exactly, so this package has no server-side dependencies.
package world

import (
	"encoding/json"
	"fmt"
)

// World is the state every room owns exactly one instance of. The payload
// is intentionally small and stands in for an arbitrary application blob.
type World struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// New returns the default state assigned to a freshly created world.
func New() World {
	return World{Count: 3, Text: "hello"}
}

// Apply returns the state after ev. It never fails and never blocks;
// events with unknown kinds are rejected at decode time and cannot
// reach this function.
func (w World) Apply(ev Event) World {
	switch ev.Kind {
	case KindIncrement:
		w.Count++
	case KindDecrement:
		w.Count--
	case KindText:
		w.Text = ev.S
	case KindWorld:
		w = ev.World
	case KindGameOver:
		// terminal marker, no state effect
	}
	return w
}

// Kind discriminates the event union on the wire.
type Kind string

const (
	KindWorld     Kind = "World"
	KindIncrement Kind = "Increment"
	KindDecrement Kind = "Decrement"
	KindText      Kind = "Text"
	KindGameOver  Kind = "GameOver"
)

// Event is one variant of the closed mutation set. Events carry no room or
// sender identity; the connection that produced them supplies both.
type Event struct {
	Kind  Kind
	S     string // payload of KindText
	World World  // payload of KindWorld
}

// Constructors for the variants that carry no payload fields beyond Kind.

func Increment() Event       { return Event{Kind: KindIncrement} }
func Decrement() Event       { return Event{Kind: KindDecrement} }
func SetText(s string) Event { return Event{Kind: KindText, S: s} }
func Replace(w World) Event  { return Event{Kind: KindWorld, World: w} }
func GameOver() Event        { return Event{Kind: KindGameOver} }

// wireEvent is the flat JSON shape of every variant: a "kind" tag with the
// variant's fields inlined next to it.
type wireEvent struct {
	Kind  Kind    `json:"kind"`
	S     *string `json:"s,omitempty"`
	Count *int    `json:"count,omitempty"`
	Text  *string `json:"text,omitempty"`
}

// MarshalJSON encodes the event as a tagged union, e.g.
// {"kind":"Increment"} or {"kind":"World","count":3,"text":"hello"}.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Kind: e.Kind}
	switch e.Kind {
	case KindText:
		w.S = &e.S
	case KindWorld:
		w.Count = &e.World.Count
		w.Text = &e.World.Text
	case KindIncrement, KindDecrement, KindGameOver:
	default:
		return nil, fmt.Errorf("world: cannot encode event kind %q", e.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the tagged union, rejecting unknown kinds and
// variants missing their payload fields.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindIncrement, KindDecrement, KindGameOver:
		*e = Event{Kind: w.Kind}
	case KindText:
		if w.S == nil {
			return fmt.Errorf("world: %s event missing field %q", w.Kind, "s")
		}
		*e = Event{Kind: w.Kind, S: *w.S}
	case KindWorld:
		if w.Count == nil || w.Text == nil {
			return fmt.Errorf("world: %s event missing state fields", w.Kind)
		}
		*e = Event{Kind: w.Kind, World: World{Count: *w.Count, Text: *w.Text}}
	default:
		return fmt.Errorf("world: unknown event kind %q", w.Kind)
	}
	return nil
}

// Decode parses one inbound frame as an event.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Encode serializes an event for the wire.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}
