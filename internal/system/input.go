package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/farmgame/client/internal/core/system"
	"github.com/farmgame/client/internal/core/task"
)

// TaskSystem runs continuations posted by worker goroutines and fires
// deferred actions whose time has come. Phase 0 (Input).
type TaskSystem struct {
	queue *task.Queue
	log   *zap.Logger
}

func NewTaskSystem(queue *task.Queue, log *zap.Logger) *TaskSystem {
	return &TaskSystem{queue: queue, log: log.Named("tasks")}
}

func (s *TaskSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *TaskSystem) Update(dt time.Duration) {
	ran := s.queue.Drain()
	fired := s.queue.Advance(dt)
	if ran+fired > 0 {
		s.log.Debug("tasks run", zap.Int("posted", ran), zap.Int("deferred", fired))
	}
}
