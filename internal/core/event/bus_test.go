package event

import "testing"

func TestEventsArriveNextTickInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e MapLoaded) { got = append(got, "map:"+e.Name) })
	Subscribe(b, func(e MoveStarted) { got = append(got, "start:"+e.Name) })

	Emit(b, MoveStarted{Name: "player"})
	Emit(b, MapLoaded{Name: "init_map"})

	if b.DispatchAll() != 0 || len(got) != 0 {
		t.Fatal("events must not be visible before the swap")
	}
	b.SwapBuffers()
	if n := b.DispatchAll(); n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}
	if len(got) != 2 || got[0] != "start:player" || got[1] != "map:init_map" {
		t.Fatalf("expected emission order, got %v", got)
	}

	b.SwapBuffers()
	if b.DispatchAll() != 0 {
		t.Fatal("events must be delivered once")
	}
}

func TestEmitDuringDispatchWaitsForNextSwap(t *testing.T) {
	b := NewBus()
	var stops int
	Subscribe(b, func(MoveStarted) { Emit(b, MoveStopped{}) })
	Subscribe(b, func(MoveStopped) { stops++ })

	Emit(b, MoveStarted{})
	b.SwapBuffers()
	b.DispatchAll()
	if stops != 0 || b.Pending() != 1 {
		t.Fatalf("expected re-emitted event pending, stops=%d pending=%d", stops, b.Pending())
	}
	b.SwapBuffers()
	b.DispatchAll()
	if stops != 1 {
		t.Fatalf("expected 1 stop, got %d", stops)
	}
}
