package movement

import (
	"time"

	"github.com/farmgame/client/internal/geom"
)

const (
	DefaultSpeed            = 5.0
	DefaultStoppingDistance = 0.05

	directionEpsilon = 1e-9
)

// Listener receives a Movable's transition notifications. Nil fields are
// skipped.
type Listener struct {
	MoveStarted      func()
	MoveStopped      func()
	DirectionChanged func(dir geom.Vec2)
}

// Subscription identifies one Listener on one Movable.
type Subscription uint64

type observer struct {
	id Subscription
	l  Listener
}

// Movable is the per-entity motion state machine: Idle or Moving toward a
// target on the play plane. It self-registers with its Registry while
// enabled. Game-loop goroutine only.
type Movable struct {
	name     string
	registry *Registry

	position         geom.Vec2
	speed            float64
	stoppingDistance float64

	target    geom.Vec2
	hasTarget bool
	direction geom.Vec2 // unit vector or zero
	facing    geom.Vec2 // last non-zero direction
	moving    bool

	observers []observer
	nextSub   Subscription

	enabled   bool
	destroyed bool
}

// NewMovable creates a disabled, idle Movable facing down. reg may be nil for
// a mover that never joins a registry.
func NewMovable(name string, reg *Registry) *Movable {
	return &Movable{
		name:             name,
		registry:         reg,
		speed:            DefaultSpeed,
		stoppingDistance: DefaultStoppingDistance,
		facing:           geom.Down,
	}
}

func (m *Movable) Name() string { return m.name }
func (m *Movable) Position() geom.Vec2 { return m.position }
func (m *Movable) Speed() float64 { return m.speed }
func (m *Movable) StoppingDistance() float64 { return m.stoppingDistance }
func (m *Movable) IsMoving() bool { return m.moving }
func (m *Movable) Direction() geom.Vec2 { return m.direction }
func (m *Movable) Facing() geom.Vec2 { return m.facing }
func (m *Movable) Enabled() bool { return m.enabled }
func (m *Movable) Destroyed() bool { return m.destroyed }
func (m *Movable) Target() (geom.Vec2, bool) { return m.target, m.hasTarget }

// SetSpeed clamps negative speeds to 0.
func (m *Movable) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	m.speed = speed
}

func (m *Movable) SetStoppingDistance(d float64) {
	if d < 0 {
		d = 0
	}
	m.stoppingDistance = d
}

// ── Lifecycle ─────────────────────────────────────────────────────

// Enable activates the mover and registers it.
func (m *Movable) Enable() {
	if m.enabled || m.destroyed {
		return
	}
	m.enabled = true
	if m.registry != nil {
		m.registry.Register(m)
	}
}

// Disable deactivates the mover and unregisters it. Motion state is kept.
func (m *Movable) Disable() {
	if !m.enabled {
		return
	}
	m.enabled = false
	if m.registry != nil {
		m.registry.Unregister(m)
	}
}

// Destroy disables the mover for good and drops every observer.
func (m *Movable) Destroy() {
	if m.destroyed {
		return
	}
	m.Disable()
	m.moving = false
	m.hasTarget = false
	m.direction = geom.Zero2
	m.observers = nil
	m.destroyed = true
}

// ── Observers ─────────────────────────────────────────────────────

// Subscribe adds l to the observer list. Observers are notified in
// subscription order.
func (m *Movable) Subscribe(l Listener) Subscription {
	m.nextSub++
	m.observers = append(m.observers, observer{id: m.nextSub, l: l})
	return m.nextSub
}

// Unsubscribe removes one observer. Unknown subscriptions are ignored.
func (m *Movable) Unsubscribe(s Subscription) {
	for i, o := range m.observers {
		if o.id == s {
			m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
			return
		}
	}
}

// ObserverCount is the number of live subscriptions.
func (m *Movable) ObserverCount() int { return len(m.observers) }

func (m *Movable) emitStart() {
	for _, o := range m.snapshot() {
		if o.l.MoveStarted != nil {
			o.l.MoveStarted()
		}
	}
}

func (m *Movable) emitStop() {
	for _, o := range m.snapshot() {
		if o.l.MoveStopped != nil {
			o.l.MoveStopped()
		}
	}
}

func (m *Movable) emitDirection(dir geom.Vec2) {
	for _, o := range m.snapshot() {
		if o.l.DirectionChanged != nil {
			o.l.DirectionChanged(dir)
		}
	}
}

// snapshot lets observers unsubscribe while being notified.
func (m *Movable) snapshot() []observer {
	if len(m.observers) == 0 {
		return nil
	}
	return append([]observer(nil), m.observers...)
}

// ── Commands ──────────────────────────────────────────────────────

// MoveTo sets a new target. Idle→Moving fires MoveStarted once; a changed
// motion direction (zero included) fires DirectionChanged. A target equal to
// the current position still enters Moving and leaves it on the next Update.
func (m *Movable) MoveTo(target geom.Vec2) {
	if m.destroyed {
		return
	}
	m.target = target
	m.hasTarget = true

	dir := target.Sub(m.position).Normalize()
	if !dir.IsZero() {
		m.facing = dir
	}
	changed := !dir.ApproxEqual(m.direction, directionEpsilon)
	m.direction = dir

	if !m.moving {
		m.moving = true
		m.emitStart()
	}
	if changed {
		m.emitDirection(dir)
	}
}

// Stop ends an in-flight move. MoveStopped fires only if the mover was
// moving.
func (m *Movable) Stop() {
	m.hasTarget = false
	if !m.moving {
		return
	}
	m.moving = false
	m.direction = geom.Zero2
	m.emitStop()
}

// Teleport stops any move without a distance check and snaps to pos.
func (m *Movable) Teleport(pos geom.Vec2) {
	m.Stop()
	m.position = pos
}

// Nudge displaces the mover by delta without touching motion state. Used for
// impulse knockback.
func (m *Movable) Nudge(delta geom.Vec2) {
	m.position = m.position.Add(delta)
}

// SetFacing turns the mover without moving it. A zero direction is ignored.
func (m *Movable) SetFacing(dir geom.Vec2) {
	n := dir.Normalize()
	if n.IsZero() {
		return
	}
	m.facing = n
	m.emitDirection(n)
}

// Update advances toward the target by speed*dt, never past it. Reaching
// the target (or starting within the stopping distance) snaps to it and
// returns to Idle in the same tick.
func (m *Movable) Update(dt time.Duration) {
	if !m.moving || m.destroyed {
		return
	}
	if m.position.Dist(m.target) < m.stoppingDistance {
		m.arrive()
		return
	}
	step := m.speed * dt.Seconds()
	m.position = m.position.MoveTowards(m.target, step)
	if m.position == m.target || m.position.Dist(m.target) < m.stoppingDistance {
		m.arrive()
	}
}

func (m *Movable) arrive() {
	m.position = m.target
	m.Stop()
}
