package world

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/config"
	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/core/event"
	"github.com/farmgame/client/internal/core/task"
	"github.com/farmgame/client/internal/data"
	"github.com/farmgame/client/internal/movement"
	"github.com/farmgame/client/internal/npc"
	"github.com/farmgame/client/internal/resource"
)

const testManifest = `
assets:
  - key: maps/init_map
    kind: map
    props:
      tile_size: 1
      spawn_x: 2
      spawn_y: 3
  - key: maps/big_field
    kind: map
    props:
      tile_size: 2
  - key: prefabs/player/player
    kind: prefab
    name: Player
  - key: prefabs/npc/chicken
    kind: prefab
    name: Chicken
    props:
      move_speed: 3
      personality: A skittish chicken.
`

type env struct {
	cfg      *config.Config
	q        *task.Queue
	bus      *event.Bus
	cache    *resource.Cache
	reg      *movement.Registry
	ecs      *ecs.World
	profiles *MemoryProfiles
	maps     *MapManager
	players  *PlayerManager
	npcs     *NpcManager
}

func newEnv(t *testing.T, advisor npc.Advisor) *env {
	t.Helper()
	manifest, err := data.ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	log := zap.NewNop()
	e := &env{
		cfg:      config.Default(),
		q:        task.NewQueue(),
		bus:      event.NewBus(),
		ecs:      ecs.NewWorld(),
		profiles: NewMemoryProfiles(),
	}
	e.cache = resource.NewCache(manifest, e.q, log)
	e.reg = movement.NewRegistry(log)
	e.maps = NewMapManager(e.cache, e.cfg.Map.TileSize, e.bus, log)
	e.players = NewPlayerManager(e.cfg.Player, e.cache, e.reg, e.ecs, e.profiles, e.bus, log)
	e.npcs = NewNpcManager(e.cfg.Npc, e.cfg.Advisory, NpcDeps{
		World:    e.ecs,
		Cache:    e.cache,
		Registry: e.reg,
		Maps:     e.maps,
		Tasks:    e.q,
		Bus:      e.bus,
		Advisor:  advisor,
	}, log)

	for _, step := range []interface{ Initialize() error }{e.cache, e.maps, e.players, e.reg, e.npcs} {
		if err := step.Initialize(); err != nil {
			t.Fatalf("initialize: %v", err)
		}
	}
	return e
}

// drainUntil runs loop continuations until cond holds.
func (e *env) drainUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for loop continuation")
		}
		e.q.Drain()
		time.Sleep(time.Millisecond)
	}
}

// dispatch delivers everything emitted so far.
func (e *env) dispatch() {
	e.bus.SwapBuffers()
	e.bus.DispatchAll()
}
