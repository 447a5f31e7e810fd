package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/farmgame/client/internal/core/system"
	"github.com/farmgame/client/internal/world"
)

const saveTimeout = 5 * time.Second

// AutosaveSystem periodically saves the player profile. Phase 5 (Persist).
type AutosaveSystem struct {
	players   *world.PlayerManager
	log       *zap.Logger
	tickCount int
	interval  int // save every N ticks, 0 disables
}

func NewAutosaveSystem(players *world.PlayerManager, log *zap.Logger, intervalTicks int) *AutosaveSystem {
	return &AutosaveSystem{
		players:  players,
		log:      log.Named("autosave"),
		interval: intervalTicks,
	}
}

func (s *AutosaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutosaveSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.SaveNow()
}

// SaveNow persists the player immediately. Called on shutdown as well.
// A missing player is not an error.
func (s *AutosaveSystem) SaveNow() {
	if s.players.Player() == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.players.SaveProfile(ctx); err != nil {
		s.log.Error("autosave failed", zap.Error(err))
		return
	}
	s.log.Debug("profile saved")
}
