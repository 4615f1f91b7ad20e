package client

import (
	"testing"

	"github.com/Kinrany/mortal-treasures/pkg/world"
)

func TestPredictFoldsWithoutMutating(t *testing.T) {
	r := &Replica{state: world.New()}

	got := r.Predict(world.Increment(), world.Increment(), world.SetText("soon"))
	want := world.World{Count: world.New().Count + 2, Text: "soon"}
	if got != want {
		t.Errorf("Predict = %+v, want %+v", got, want)
	}
	if r.State() != world.New() {
		t.Errorf("Predict mutated replica state: %+v", r.State())
	}
}

func TestPredictMatchesServerApplyOrder(t *testing.T) {
	// The prediction contract: folding events locally must equal the
	// server applying the same events in the same order.
	seq := []world.Event{
		world.Replace(world.World{Count: 10, Text: "base"}),
		world.Decrement(),
		world.SetText("updated"),
		world.GameOver(),
	}

	server := world.New()
	for _, ev := range seq {
		server = server.Apply(ev)
	}

	r := &Replica{state: world.New()}
	if got := r.Predict(seq...); got != server {
		t.Errorf("prediction %+v diverged from server fold %+v", got, server)
	}
}
