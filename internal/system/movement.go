package system

import (
	"time"

	coresys "github.com/farmgame/client/internal/core/system"
	"github.com/farmgame/client/internal/movement"
	"github.com/farmgame/client/internal/world"
)

// MovementSystem ticks every registered mover, then copies the player's
// plane position onto its scene instance. Phase 2 (Update).
type MovementSystem struct {
	registry *movement.Registry
	players  *world.PlayerManager
}

func NewMovementSystem(registry *movement.Registry, players *world.PlayerManager) *MovementSystem {
	return &MovementSystem{registry: registry, players: players}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	s.registry.Update(dt)
	if s.players != nil {
		s.players.SyncTransform()
	}
}

// KnockbackSystem integrates hit impulses on NPC bodies. Phase 2 (Update),
// registered after MovementSystem.
type KnockbackSystem struct {
	npcs *world.NpcManager
}

func NewKnockbackSystem(npcs *world.NpcManager) *KnockbackSystem {
	return &KnockbackSystem{npcs: npcs}
}

func (s *KnockbackSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *KnockbackSystem) Update(dt time.Duration) {
	s.npcs.ApplyKnockback(dt)
}

// OccupancySystem moves NPCs between grid cells after this tick's motion.
// Phase 3 (PostUpdate).
type OccupancySystem struct {
	npcs *world.NpcManager
}

func NewOccupancySystem(npcs *world.NpcManager) *OccupancySystem {
	return &OccupancySystem{npcs: npcs}
}

func (s *OccupancySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *OccupancySystem) Update(_ time.Duration) {
	s.npcs.SyncOccupancy()
}
