package event

import (
	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/geom"
)

// Notifications for the animation and UI collaborators.

type MoveStarted struct {
	Entity ecs.EntityID
	Name   string
}

type MoveStopped struct {
	Entity   ecs.EntityID
	Name     string
	Position geom.Vec2
}

type DirectionChanged struct {
	Entity    ecs.EntityID
	Name      string
	Direction geom.Vec2
}

type PlayerCreated struct {
	Entity  ecs.EntityID
	Profile string
	IsNew   bool
}

type MapLoaded struct {
	Name     string
	TileSize float64
}

type NpcHit struct {
	Npc    ecs.EntityID
	Source geom.Vec2
	Force  float64
}

// NpcDirective is a slow-path decision applied to an NPC.
type NpcDirective struct {
	Npc    ecs.EntityID
	Action string
	Speech string
}
