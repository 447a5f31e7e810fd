package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Initializer is a service the boot sequence brings up. A second
// Initialize must be a no-op.
type Initializer interface {
	Initialize() error
}

// Disposer is the teardown hook run by Shutdown, in reverse boot order.
type Disposer interface {
	Dispose()
}

var ErrMissingService = errors.New("boot: service not provided")

// Services are the managers brought up by Boot, in boot order.
type Services struct {
	Resources Initializer
	UI        Initializer
	Maps      Initializer
	Players   Initializer
	Movement  Initializer
}

type step struct {
	name string
	svc  Initializer
}

// Boot initializes the services one after the other, then hands over to the
// start policy. Game-loop goroutine only.
type Boot struct {
	log    *zap.Logger
	steps  []step
	policy *StartPolicy
	done   int // steps that initialized successfully
	booted bool
}

func NewBoot(svc Services, policy *StartPolicy, log *zap.Logger) *Boot {
	b := &Boot{
		log:    log.Named("boot"),
		policy: policy,
		steps: []step{
			{"resource cache", svc.Resources},
			{"ui", svc.UI},
			{"map", svc.Maps},
			{"player", svc.Players},
			{"movement registry", svc.Movement},
		},
	}
	if policy != nil {
		b.steps = append(b.steps, step{"start policy", policy})
	}
	return b
}

// Start runs every step in order and stops at the first failure. Once
// booted, further calls return nil without doing anything.
func (b *Boot) Start(ctx context.Context) error {
	if b.booted {
		return nil
	}
	for i, s := range b.steps {
		if s.svc == nil {
			return fmt.Errorf("%s: %w", s.name, ErrMissingService)
		}
		if err := s.svc.Initialize(); err != nil {
			b.log.Error("boot step failed", zap.String("step", s.name), zap.Error(err))
			return fmt.Errorf("initialize %s: %w", s.name, err)
		}
		if i >= b.done {
			b.done = i + 1
		}
		b.log.Debug("boot step done", zap.String("step", s.name))
	}
	if b.policy != nil {
		if err := b.policy.StartNewGame(ctx); err != nil {
			return fmt.Errorf("start game: %w", err)
		}
	}
	b.booted = true
	b.log.Info("boot complete", zap.Int("steps", len(b.steps)))
	return nil
}

// Booted reports whether Start has completed.
func (b *Boot) Booted() bool { return b.booted }

// Shutdown disposes every initialized service in reverse order.
func (b *Boot) Shutdown() {
	for i := b.done - 1; i >= 0; i-- {
		s := b.steps[i]
		if d, ok := s.svc.(Disposer); ok {
			d.Dispose()
			b.log.Debug("disposed", zap.String("step", s.name))
		}
	}
	b.done = 0
	b.booted = false
	b.log.Info("shutdown complete")
}
