package system

import (
	"time"

	"github.com/farmgame/client/internal/core/ecs"
	coresys "github.com/farmgame/client/internal/core/system"
)

// CleanupSystem releases entities queued with MarkForDestruction once every
// other system has finished the tick. Phase 6 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	destroyed int
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.destroyed += s.world.FlushDestroyQueue()
}

// Destroyed is the running total of released entities.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
