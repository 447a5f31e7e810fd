package grid

import (
	"errors"
	"math"

	"github.com/farmgame/client/internal/geom"
)

// ErrInvalidTileSize rejects a non-positive tile size.
var ErrInvalidTileSize = errors.New("tile size must be positive")

// Cell is a tile coordinate. It is always derived from a world position and
// never stored as the source of truth.
type Cell struct {
	X, Y int
}

// Mapper converts between world positions and tiles of one active map.
// World X maps to tile X and world Z (plane Y) to tile Y. There is no bounds
// check: cells outside the map are valid integers.
type Mapper struct {
	tileSize float64
}

func NewMapper(tileSize float64) *Mapper {
	if tileSize <= 0 {
		tileSize = 1
	}
	return &Mapper{tileSize: tileSize}
}

func (m *Mapper) TileSize() float64 { return m.tileSize }

// SetTileSize changes the lattice for all future conversions.
func (m *Mapper) SetTileSize(size float64) error {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return ErrInvalidTileSize
	}
	m.tileSize = size
	return nil
}

// WorldToGrid returns the cell containing p.
func (m *Mapper) WorldToGrid(p geom.Vec3) Cell {
	return Cell{
		X: int(math.Floor(p.X / m.tileSize)),
		Y: int(math.Floor(p.Z / m.tileSize)),
	}
}

// GridToWorld returns the centre of c at height 0.
func (m *Mapper) GridToWorld(c Cell) geom.Vec3 {
	half := m.tileSize * 0.5
	return geom.Vec3{
		X: float64(c.X)*m.tileSize + half,
		Y: 0,
		Z: float64(c.Y)*m.tileSize + half,
	}
}

// CellCenter snaps p to the centre of its cell.
func (m *Mapper) CellCenter(p geom.Vec3) geom.Vec3 {
	return m.GridToWorld(m.WorldToGrid(p))
}

func (m *Mapper) PlaneToGrid(p geom.Vec2) Cell { return m.WorldToGrid(p.Lift()) }
func (m *Mapper) GridToPlane(c Cell) geom.Vec2 { return m.GridToWorld(c).Plane() }
