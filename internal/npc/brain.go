package npc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when a request is dropped because one is already
// outstanding.
var ErrBusy = errors.New("npc brain busy")

// Poster delivers a continuation to the game loop goroutine.
type Poster interface {
	Post(fn func())
}

// Limiter bounds outstanding advisory requests across every brain.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter allows n requests in flight. n <= 0 means unlimited.
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		return nil
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(n))}
}

func (l *Limiter) tryAcquire() bool {
	return l == nil || l.sem.TryAcquire(1)
}

func (l *Limiter) release() {
	if l != nil {
		l.sem.Release(1)
	}
}

// Brain is one NPC's slow path. At most one request is outstanding; further
// triggers are dropped, not queued. Decide and Close run on the game loop;
// the advisor call runs on its own goroutine and the result is posted back.
type Brain struct {
	name        string
	personality string
	advisor     Advisor
	poster      Poster
	limiter     *Limiter
	timeout     time.Duration
	log         *zap.Logger

	busy   bool
	closed bool
	cancel context.CancelFunc
}

type BrainOptions struct {
	Name        string
	Personality string
	Timeout     time.Duration
	Limiter     *Limiter
}

func NewBrain(advisor Advisor, poster Poster, opts BrainOptions, log *zap.Logger) *Brain {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Brain{
		name:        opts.Name,
		personality: opts.Personality,
		advisor:     advisor,
		poster:      poster,
		limiter:     opts.Limiter,
		timeout:     opts.Timeout,
		log:         log.Named("npc").With(zap.String("npc", opts.Name)),
	}
}

func (b *Brain) Busy() bool { return b.busy }
func (b *Brain) Personality() string { return b.personality }

// Decide asks the advisor about situation. apply runs on the loop with the
// directive once it arrives. Failures are logged and never retried.
func (b *Brain) Decide(situation string, apply func(Directive)) error {
	if b.closed {
		return ErrBusy
	}
	if b.busy || !b.limiter.tryAcquire() {
		b.log.Debug("advisory request dropped", zap.Bool("busy", b.busy))
		return ErrBusy
	}
	b.busy = true

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	b.cancel = cancel
	req := Request{Npc: b.name, Personality: b.personality, Situation: situation}
	advisor, limiter := b.advisor, b.limiter
	started := time.Now()
	b.log.Debug("advisory request sent")

	go func() {
		d, err := advisor.Advise(ctx, req)
		cancel()
		limiter.release()
		b.poster.Post(func() {
			b.busy = false
			b.cancel = nil
			if b.closed {
				return
			}
			if err != nil {
				b.log.Warn("advisory request failed", zap.Duration("took", time.Since(started)), zap.Error(err))
				return
			}
			b.log.Info("advisory directive",
				zap.String("action", string(d.Action)),
				zap.String("speech", d.Speech),
				zap.Duration("took", time.Since(started)))
			if apply != nil {
				apply(d)
			}
		})
	}()
	return nil
}

// Close abandons any outstanding request. Its result is discarded.
func (b *Brain) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.cancel != nil {
		b.cancel()
	}
}
