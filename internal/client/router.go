package client

import (
	"go.uber.org/zap"

	"github.com/farmgame/client/internal/geom"
	"github.com/farmgame/client/internal/world"
)

// PointerFilter reports whether the pointer is over a UI surface.
type PointerFilter interface {
	IsPointerOver(x, y int) bool
}

// ClickResult says what a click turned into.
type ClickResult int

const (
	ClickNone    ClickResult = iota // rejected, nothing happened
	ClickUI                         // swallowed by a panel
	ClickHit                        // an NPC in the clicked cell was hit
	ClickMove                       // the player was sent to the point
)

func (r ClickResult) String() string {
	switch r {
	case ClickUI:
		return "ui"
	case ClickHit:
		return "hit"
	case ClickMove:
		return "move"
	}
	return "none"
}

// PointerRouter turns screen clicks into world actions. Clicks over UI never
// reach the world.
type PointerRouter struct {
	filter   PointerFilter
	camera   *Camera
	maps     *world.MapManager
	players  *world.PlayerManager
	npcs     *world.NpcManager
	hitForce float64
	log      *zap.Logger
}

func NewPointerRouter(filter PointerFilter, camera *Camera, maps *world.MapManager, players *world.PlayerManager, npcs *world.NpcManager, hitForce float64, log *zap.Logger) *PointerRouter {
	return &PointerRouter{
		filter:   filter,
		camera:   camera,
		maps:     maps,
		players:  players,
		npcs:     npcs,
		hitForce: hitForce,
		log:      log.Named("pointer"),
	}
}

// Click handles a left click at pixel (sx, sy).
func (r *PointerRouter) Click(sx, sy int) ClickResult {
	if r.filter != nil && r.filter.IsPointerOver(sx, sy) {
		return ClickUI
	}
	point := r.camera.ScreenToPlane(sx, sy)

	if r.maps.Loaded() {
		cell := r.maps.Grid().PlaneToGrid(point)
		if ids := r.npcs.At(cell); len(ids) > 0 {
			if err := r.npcs.Hit(ids[0], r.attacker(point), r.hitForce); err != nil {
				r.log.Warn("hit failed", zap.Error(err))
				return ClickNone
			}
			return ClickHit
		}
	}

	if err := r.players.MoveTo(point); err != nil {
		r.log.Debug("move ignored", zap.Error(err))
		return ClickNone
	}
	return ClickMove
}

// attacker is the player's position, or the clicked point without a player.
func (r *PointerRouter) attacker(fallback geom.Vec2) geom.Vec2 {
	if p := r.players.Player(); p != nil {
		return p.Movable.Position()
	}
	return fallback
}
