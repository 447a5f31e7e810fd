package movement

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/geom"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	m := NewMovable("a", reg)
	m.Enable()
	reg.Register(m)
	reg.Register(m)
	if reg.Count() != 1 {
		t.Fatalf("expected 1 entry, got %d", reg.Count())
	}
	m.Disable()
	m.Disable()
	reg.Unregister(m)
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Count())
	}
}

func TestStopAllAndQueries(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	a := NewMovable("a", reg)
	b := NewMovable("b", reg)
	idle := NewMovable("idle", reg)
	for _, m := range []*Movable{a, b, idle} {
		m.Enable()
	}
	a.MoveTo(geom.Vec2{X: 5})
	b.MoveTo(geom.Vec2{Y: 5})

	moving := reg.Moving()
	if len(moving) != 2 || moving[0] != a || moving[1] != b {
		t.Fatalf("expected [a b] in registration order, got %v", moving)
	}
	if !reg.IsAnyMoving() {
		t.Fatal("expected IsAnyMoving")
	}

	var stops int
	a.Subscribe(Listener{MoveStopped: func() { stops++ }})
	b.Subscribe(Listener{MoveStopped: func() { stops++ }})
	idle.Subscribe(Listener{MoveStopped: func() { stops++ }})

	reg.StopAll()
	if reg.IsAnyMoving() || len(reg.Moving()) != 0 {
		t.Fatal("expected nothing moving after StopAll")
	}
	if stops != 2 {
		t.Fatalf("expected 2 stop notifications, got %d", stops)
	}
}

func TestDisabledRegistryDoesNotTick(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	m := NewMovable("a", reg)
	m.Enable()
	m.MoveTo(geom.Vec2{X: 10})

	reg.SetEnabled(false)
	reg.Update(time.Second)
	if m.Position() != geom.Zero2 {
		t.Fatalf("disabled registry must not move, got %+v", m.Position())
	}
	reg.SetEnabled(true)
	reg.Update(time.Second)
	if m.Position() != (geom.Vec2{X: 5}) {
		t.Fatalf("expected (5,0), got %+v", m.Position())
	}
}

func TestUnregisterDuringUpdate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	a := NewMovable("a", reg)
	b := NewMovable("b", reg)
	a.Enable()
	b.Enable()
	a.MoveTo(geom.Vec2{X: 1})
	b.MoveTo(geom.Vec2{X: 100})
	a.Subscribe(Listener{MoveStopped: func() { b.Disable() }})

	reg.Update(time.Second)
	if b.Position() != (geom.Vec2{X: 5}) {
		t.Fatalf("b must still be ticked in the snapshot, got %+v", b.Position())
	}
	if reg.Contains(b) || reg.Count() != 1 {
		t.Fatal("b must be unregistered after the tick")
	}
}

func TestDestroyedEntriesArePruned(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	a := NewMovable("a", reg)
	a.Enable()
	// Bypass Destroy's own unregister to simulate a stale entry.
	a.destroyed = true
	if reg.Count() != 0 {
		t.Fatalf("expected destroyed entry pruned, got %d", reg.Count())
	}
}

func TestInitializeDisposeLifecycle(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Initialize(); err != nil {
		t.Fatal(err)
	}
	m := NewMovable("a", reg)
	m.Enable()
	if err := reg.Initialize(); err != nil {
		t.Fatal(err)
	}
	if reg.Count() != 1 {
		t.Fatal("second Initialize must be a no-op")
	}
	reg.Dispose()
	if reg.Count() != 0 {
		t.Fatal("dispose must forget movers")
	}
}
