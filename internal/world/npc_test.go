package world

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farmgame/client/internal/core/event"
	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/grid"
	"github.com/farmgame/client/internal/npc"
)

const chicken = "prefabs/npc/chicken"

func TestSpawnNpc(t *testing.T) {
	e := newEnv(t, nil)
	id, err := e.npcs.Spawn(chicken, geom.Vec2{X: 0.5, Y: 0.5}, "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	n, ok := e.npcs.Get(id)
	if !ok {
		t.Fatal("expected npc")
	}
	if n.Personality != "A skittish chicken." || n.Movable.Speed() != 3 {
		t.Fatalf("template props not applied: %+v speed %v", n.Personality, n.Movable.Speed())
	}
	if n.Brain != nil {
		t.Fatal("no advisor means no brain")
	}
	if got := e.npcs.At(grid.Cell{}); len(got) != 1 || got[0] != id {
		t.Fatalf("expected npc on cell (0,0), got %v", got)
	}
	if _, err := e.npcs.Spawn("prefabs/npc/unicorn", geom.Vec2{}, ""); err == nil {
		t.Fatal("expected missing prefab error")
	}
}

func TestDespawnRecyclesToPool(t *testing.T) {
	e := newEnv(t, nil)
	id, err := e.npcs.Spawn(chicken, geom.Vec2{}, "")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := e.npcs.Get(id)
	inst := n.Instance

	if err := e.npcs.Despawn(id); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.npcs.Get(id); !ok {
		t.Fatal("despawn is deferred to the cleanup flush")
	}
	e.ecs.FlushDestroyQueue()

	if _, ok := e.npcs.Get(id); ok {
		t.Fatal("npc must be gone after flush")
	}
	if e.cache.IdleCount(chicken) != 1 || inst.Active() {
		t.Fatalf("expected instance recycled, idle=%d", e.cache.IdleCount(chicken))
	}
	if e.reg.Contains(n.Movable) || e.npcs.Occupancy().Len() != 0 {
		t.Fatal("despawn must unregister and clear occupancy")
	}
	if err := e.npcs.Despawn(id); !errors.Is(err, ErrUnknownNpc) {
		t.Fatalf("expected ErrUnknownNpc, got %v", err)
	}

	id2, err := e.npcs.Spawn(chicken, geom.Vec2{X: 4}, "")
	if err != nil {
		t.Fatal(err)
	}
	n2, _ := e.npcs.Get(id2)
	if n2.Instance != inst {
		t.Fatal("expected the recycled instance to be reused")
	}
	if id2 == id {
		t.Fatal("a reused slot must carry a new generation")
	}
}

func TestHitFastReaction(t *testing.T) {
	e := newEnv(t, nil)
	id, _ := e.npcs.Spawn(chicken, geom.Vec2{}, "")
	n, _ := e.npcs.Get(id)

	var hits []event.NpcHit
	event.Subscribe(e.bus, func(ev event.NpcHit) { hits = append(hits, ev) })

	if err := e.npcs.Hit(id, geom.Vec2{X: -1}, 0); err != nil {
		t.Fatal(err)
	}
	b, _ := e.npcs.Body(id)
	if b.Velocity != (geom.Vec2{X: e.cfg.Npc.HitForce}) {
		t.Fatalf("expected impulse away from source, got %+v", b.Velocity)
	}
	if n.Instance.Tint != flashRed {
		t.Fatal("expected red flash")
	}

	e.q.Advance(e.cfg.Npc.FlashDuration / 2)
	if n.Instance.Tint != flashRed {
		t.Fatal("flash ended early")
	}
	e.q.Advance(e.cfg.Npc.FlashDuration / 2)
	if n.Instance.Tint != n.baseTint {
		t.Fatal("expected tint restored after the flash")
	}

	e.npcs.ApplyKnockback(100 * time.Millisecond)
	if x := n.Movable.Position().X; x <= 0 {
		t.Fatalf("expected knockback along +x, got %v", x)
	}
	for i := 0; i < 200; i++ {
		e.npcs.ApplyKnockback(100 * time.Millisecond)
	}
	if !b.Velocity.IsZero() {
		t.Fatalf("expected drag to stop the npc, got %+v", b.Velocity)
	}

	e.npcs.SyncOccupancy()
	cell := e.maps.Grid().PlaneToGrid(n.Movable.Position())
	if b.Cell != cell || len(e.npcs.At(cell)) != 1 {
		t.Fatalf("occupancy not resynced to %+v", cell)
	}

	e.dispatch()
	if len(hits) != 1 || hits[0].Npc != id {
		t.Fatalf("expected one NpcHit event, got %v", hits)
	}
	if err := e.npcs.Hit(0, geom.Vec2{}, 1); !errors.Is(err, ErrUnknownNpc) {
		t.Fatalf("expected ErrUnknownNpc, got %v", err)
	}
}

func TestHitSlowReactionFlees(t *testing.T) {
	adv := npc.AdvisorFunc(func(_ context.Context, req npc.Request) (npc.Directive, error) {
		return npc.Directive{Action: npc.ActionFlee, Speech: "Bawk!"}, nil
	})
	e := newEnv(t, adv)
	id, _ := e.npcs.Spawn(chicken, geom.Vec2{}, "")
	n, _ := e.npcs.Get(id)

	if err := e.npcs.Hit(id, geom.Vec2{X: -1}, 1); err != nil {
		t.Fatal(err)
	}
	e.drainUntil(t, func() bool { return n.LastAction == npc.ActionFlee })

	if n.Speech != "Bawk!" || !n.Movable.IsMoving() {
		t.Fatalf("expected fleeing npc, speech=%q moving=%v", n.Speech, n.Movable.IsMoving())
	}
	target, _ := n.Movable.Target()
	if target.X <= n.Movable.Position().X {
		t.Fatalf("expected flee target away from the attacker, got %+v", target)
	}
}

func TestHitWhileThinkingIsDropped(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	adv := npc.AdvisorFunc(func(context.Context, npc.Request) (npc.Directive, error) {
		calls.Add(1)
		<-release
		return npc.Directive{Action: npc.ActionApproach}, nil
	})
	e := newEnv(t, adv)
	id, _ := e.npcs.Spawn(chicken, geom.Vec2{X: 5}, "")
	n, _ := e.npcs.Get(id)

	if err := e.npcs.Hit(id, geom.Vec2{}, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.npcs.Hit(id, geom.Vec2{}, 1); err != nil {
		t.Fatalf("a busy brain is not an error for the caller, got %v", err)
	}
	close(release)
	e.drainUntil(t, func() bool { return !n.Brain.Busy() })
	if calls.Load() != 1 {
		t.Fatalf("expected one advisory call, got %d", calls.Load())
	}
	b, _ := e.npcs.Body(id)
	if b.Velocity.Len() != 2 {
		t.Fatalf("both hits still apply their impulse, got %+v", b.Velocity)
	}
	if n.LastAction != npc.ActionApproach {
		t.Fatalf("expected approach, got %s", n.LastAction)
	}
}

func TestDirectiveAfterDespawnIsIgnored(t *testing.T) {
	release := make(chan struct{})
	adv := npc.AdvisorFunc(func(ctx context.Context, _ npc.Request) (npc.Directive, error) {
		<-release
		return npc.Directive{Action: npc.ActionFlee}, nil
	})
	e := newEnv(t, adv)
	id, _ := e.npcs.Spawn(chicken, geom.Vec2{}, "")
	n, _ := e.npcs.Get(id)
	if err := e.npcs.Hit(id, geom.Vec2{X: 1}, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.npcs.Despawn(id); err != nil {
		t.Fatal(err)
	}
	e.ecs.FlushDestroyQueue()
	close(release)
	e.drainUntil(t, func() bool { return !n.Brain.Busy() })
	if n.LastAction != npc.ActionNone {
		t.Fatalf("directive must not apply to a despawned npc, got %s", n.LastAction)
	}
}

func TestNpcManagerDispose(t *testing.T) {
	e := newEnv(t, nil)
	for i := 0; i < 3; i++ {
		if _, err := e.npcs.Spawn(chicken, geom.Vec2{X: float64(i)}, ""); err != nil {
			t.Fatal(err)
		}
	}
	e.npcs.Dispose()
	if e.npcs.Count() != 0 || e.cache.IdleCount(chicken) != 3 {
		t.Fatalf("expected all npcs recycled, count=%d idle=%d", e.npcs.Count(), e.cache.IdleCount(chicken))
	}
}
