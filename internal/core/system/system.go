package system

import "time"

// Phase orders systems within one tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: loop continuations, deferred actions
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: movement, knockback
	PhasePostUpdate              // 3: occupancy
	PhaseOutput                  // 4: camera, HUD state
	PhasePersist                 // 5: profile autosave
	PhaseCleanup                 // 6: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is one step of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
