package world

import (
	"sort"

	"github.com/farmgame/client/internal/core/ecs"
	"github.com/farmgame/client/internal/grid"
)

// Occupancy indexes entities by the tile they stand on. It is derived state:
// the movement systems rebuild cells from positions every tick.
// Game-loop goroutine only.
type Occupancy struct {
	cells map[grid.Cell]map[ecs.EntityID]struct{}
}

func NewOccupancy() *Occupancy {
	return &Occupancy{
		cells: make(map[grid.Cell]map[ecs.EntityID]struct{}),
	}
}

func (o *Occupancy) Add(id ecs.EntityID, c grid.Cell) {
	cell := o.cells[c]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		o.cells[c] = cell
	}
	cell[id] = struct{}{}
}

func (o *Occupancy) Remove(id ecs.EntityID, c grid.Cell) {
	if cell := o.cells[c]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(o.cells, c)
		}
	}
}

// Move re-files id when its cell changed.
func (o *Occupancy) Move(id ecs.EntityID, from, to grid.Cell) {
	if from == to {
		return
	}
	o.Remove(id, from)
	o.Add(id, to)
}

// At returns the entities on c in id order.
func (o *Occupancy) At(c grid.Cell) []ecs.EntityID {
	cell := o.cells[c]
	if len(cell) == 0 {
		return nil
	}
	out := make([]ecs.EntityID, 0, len(cell))
	for id := range cell {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Nearby returns the entities in the 3x3 block of cells around c, in id
// order.
func (o *Occupancy) Nearby(c grid.Cell) []ecs.EntityID {
	var out []ecs.EntityID
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for id := range o.cells[grid.Cell{X: c.X + dx, Y: c.Y + dy}] {
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len is the number of occupied cells.
func (o *Occupancy) Len() int { return len(o.cells) }

func (o *Occupancy) Reset() { clear(o.cells) }
