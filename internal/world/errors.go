package world

import "errors"

var (
	ErrNotInitialized = errors.New("manager not initialized")
	ErrNoPlayer       = errors.New("player not created")
	ErrNoMap          = errors.New("no map loaded")
	ErrUnknownNpc     = errors.New("unknown npc")
	// ErrMapSuperseded is passed to an async map load's callback when a later
	// load or unload replaced it before it finished.
	ErrMapSuperseded = errors.New("map load superseded")
)
