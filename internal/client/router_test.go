package client

import (
	"context"
	"image"
	"testing"

	"go.uber.org/zap"

	"github.com/farmgame/client/internal/config"
	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/core/task"
	"github.com/farmgame/client/internal/data"
	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/movement"
	"github.com/farmgame/client/internal/resource"
	"github.com/farmgame/client/internal/ui"
	"github.com/farmgame/client/internal/world"
)

const testManifest = `
assets:
  - key: maps/init_map
    kind: map
  - key: prefabs/player/player
    kind: prefab
  - key: prefabs/npc/goblin
    kind: prefab
`

type scene struct {
	ui      *ui.Manager
	camera  *Camera
	maps    *world.MapManager
	players *world.PlayerManager
	npcs    *world.NpcManager
	router  *PointerRouter
}

// newScene builds a 100x100 pixel view at 10 px per unit centred on the
// origin, so pixel (50+10x, 50-10y) is plane point (x, y).
func newScene(t *testing.T, withPlayer bool) *scene {
	t.Helper()
	manifest, err := data.ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	log := zap.NewNop()
	cfg := config.Default()
	q := task.NewQueue()
	w := ecs.NewWorld()
	cache := resource.NewCache(manifest, q, log)
	reg := movement.NewRegistry(log)

	s := &scene{
		ui:     ui.NewManager(log),
		camera: NewCamera(100, 100, 10),
	}
	s.maps = world.NewMapManager(cache, cfg.Map.TileSize, nil, log)
	s.players = world.NewPlayerManager(cfg.Player, cache, reg, w, world.NewMemoryProfiles(), nil, log)
	s.npcs = world.NewNpcManager(cfg.Npc, cfg.Advisory, world.NpcDeps{
		World:    w,
		Cache:    cache,
		Registry: reg,
		Maps:     s.maps,
		Tasks:    q,
	}, log)
	for _, step := range []interface{ Initialize() error }{cache, s.ui, s.maps, s.players, reg, s.npcs} {
		if err := step.Initialize(); err != nil {
			t.Fatalf("initialize: %v", err)
		}
	}
	if err := s.maps.LoadMap("init_map"); err != nil {
		t.Fatalf("load map: %v", err)
	}
	if withPlayer {
		if err := s.players.CreatePlayer(context.Background()); err != nil {
			t.Fatalf("create player: %v", err)
		}
	}
	s.router = NewPointerRouter(s.ui, s.camera, s.maps, s.players, s.npcs, 0, log)
	return s
}

func TestClickMovesPlayer(t *testing.T) {
	s := newScene(t, true)
	if got := s.router.Click(80, 30); got != ClickMove {
		t.Fatalf("expected move, got %v", got)
	}
	target, ok := s.players.Player().Movable.Target()
	if !ok || target != (geom.Vec2{X: 3, Y: 2}) {
		t.Fatalf("expected target (3,2), got %+v ok=%v", target, ok)
	}
}

func TestClickOverPanelIsSwallowed(t *testing.T) {
	s := newScene(t, true)
	if _, err := s.ui.OpenPanel("bag", image.Rect(70, 20, 100, 40), ui.LevelCommon); err != nil {
		t.Fatal(err)
	}
	if got := s.router.Click(80, 30); got != ClickUI {
		t.Fatalf("expected ui, got %v", got)
	}
	if s.players.Player().Movable.IsMoving() {
		t.Fatal("a click over UI must not reach the world")
	}
	if err := s.ui.HidePanel("bag"); err != nil {
		t.Fatal(err)
	}
	if got := s.router.Click(80, 30); got != ClickMove {
		t.Fatalf("hidden panel must not swallow clicks, got %v", got)
	}
}

func TestClickOnNpcCellHits(t *testing.T) {
	s := newScene(t, true)
	id, err := s.npcs.Spawn("prefabs/npc/goblin", geom.Vec2{X: 3.5, Y: 2.5}, "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	// (3.2, 2.1) lies in the goblin's cell.
	if got := s.router.Click(82, 29); got != ClickHit {
		t.Fatalf("expected hit, got %v", got)
	}
	body, _ := s.npcs.Body(id)
	if body.Velocity.IsZero() {
		t.Fatal("hit must push the npc")
	}
	if body.Velocity.X <= 0 || body.Velocity.Y <= 0 {
		t.Fatalf("push must point away from the player at the origin, got %+v", body.Velocity)
	}
	if s.players.Player().Movable.IsMoving() {
		t.Fatal("hitting must not move the player")
	}
}

func TestClickWithoutPlayer(t *testing.T) {
	s := newScene(t, false)
	if got := s.router.Click(50, 50); got != ClickNone {
		t.Fatalf("expected none without a player, got %v", got)
	}
}
