package movement

import (
	"time"

	"go.uber.org/zap"
)

// Registry is the set of active movers. Membership changes only through a
// Movable's own Enable/Disable. Iteration follows registration order.
// Game-loop goroutine only.
type Registry struct {
	log         *zap.Logger
	entries     []*Movable
	index       map[*Movable]struct{}
	enabled     bool
	initialized bool
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:     log.Named("movement"),
		entries: make([]*Movable, 0, 32),
		index:   make(map[*Movable]struct{}, 32),
		enabled: true,
	}
}

// Initialize resets the registry. A second call is a no-op.
func (r *Registry) Initialize() error {
	if r.initialized {
		return nil
	}
	r.reset()
	r.enabled = true
	r.initialized = true
	r.log.Info("movement registry initialized")
	return nil
}

// Dispose forgets every mover.
func (r *Registry) Dispose() {
	if !r.initialized {
		return
	}
	r.reset()
	r.initialized = false
}

func (r *Registry) reset() {
	r.entries = r.entries[:0]
	clear(r.index)
}

// Register adds m once. Repeated calls are no-ops.
func (r *Registry) Register(m *Movable) {
	if m == nil || m.destroyed {
		return
	}
	if _, ok := r.index[m]; ok {
		return
	}
	r.index[m] = struct{}{}
	r.entries = append(r.entries, m)
	r.log.Debug("registered", zap.String("movable", m.name))
}

// Unregister removes m. Unknown movers are ignored.
func (r *Registry) Unregister(m *Movable) {
	if m == nil {
		return
	}
	if _, ok := r.index[m]; !ok {
		return
	}
	delete(r.index, m)
	for i, e := range r.entries {
		if e == m {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.log.Debug("unregistered", zap.String("movable", m.name))
}

// Contains reports membership.
func (r *Registry) Contains(m *Movable) bool {
	_, ok := r.index[m]
	return ok
}

// Count is the number of registered movers.
func (r *Registry) Count() int {
	r.prune()
	return len(r.entries)
}

// SetEnabled pauses or resumes Update for every mover.
func (r *Registry) SetEnabled(enabled bool) { r.enabled = enabled }
func (r *Registry) Enabled() bool { return r.enabled }

// Update ticks every mover in registration order. Movers that unregister
// during the tick are still ticked this once; destroyed ones are skipped.
func (r *Registry) Update(dt time.Duration) {
	if !r.enabled {
		return
	}
	for _, m := range r.live() {
		if !m.destroyed {
			m.Update(dt)
		}
	}
}

// StopAll stops every registered mover.
func (r *Registry) StopAll() {
	for _, m := range r.live() {
		if !m.destroyed {
			m.Stop()
		}
	}
}

// Moving returns a snapshot of the movers currently in Moving state.
func (r *Registry) Moving() []*Movable {
	var out []*Movable
	for _, m := range r.live() {
		if m.moving {
			out = append(out, m)
		}
	}
	return out
}

// IsAnyMoving reports whether at least one mover is moving.
func (r *Registry) IsAnyMoving() bool {
	for _, m := range r.entries {
		if !m.destroyed && m.moving {
			return true
		}
	}
	return false
}

// live prunes destroyed movers and returns a copy safe to iterate while
// movers enable or disable themselves.
func (r *Registry) live() []*Movable {
	r.prune()
	return append([]*Movable(nil), r.entries...)
}

func (r *Registry) prune() {
	n := 0
	for _, m := range r.entries {
		if m.destroyed {
			delete(r.index, m)
			continue
		}
		r.entries[n] = m
		n++
	}
	for i := n; i < len(r.entries); i++ {
		r.entries[i] = nil
	}
	r.entries = r.entries[:n]
}
