package grid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/farmgame/client/internal/geom"
)

func TestWorldToGridAndBack(t *testing.T) {
	m := NewMapper(1.0)

	c := m.WorldToGrid(geom.Vec3{X: 2.7, Y: 9, Z: 3.2})
	if c != (Cell{2, 3}) {
		t.Fatalf("expected (2, 3), got %+v", c)
	}
	w := m.GridToWorld(Cell{2, 3})
	if w != (geom.Vec3{X: 2.5, Y: 0, Z: 3.5}) {
		t.Fatalf("expected (2.5, 0, 3.5), got %+v", w)
	}
}

func TestNegativeCoordinatesFloor(t *testing.T) {
	m := NewMapper(1.0)
	if c := m.WorldToGrid(geom.Vec3{X: -0.1, Z: -1.0}); c != (Cell{-1, -1}) {
		t.Fatalf("expected (-1, -1), got %+v", c)
	}
	if c := m.WorldToGrid(geom.Vec3{X: -1000.5, Z: 5000}); c != (Cell{-1001, 5000}) {
		t.Fatalf("expected out-of-map cell to be returned as-is, got %+v", c)
	}
}

func TestCellRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []float64{1, 0.5, 2, 3.75} {
		m := NewMapper(size)
		for i := 0; i < 200; i++ {
			p := geom.Vec3{X: (rng.Float64() - 0.5) * 200, Z: (rng.Float64() - 0.5) * 200}
			cell := m.WorldToGrid(p)
			center := m.GridToWorld(cell)
			if got := m.WorldToGrid(center); got != cell {
				t.Fatalf("size %v: centre of %+v maps to %+v", size, cell, got)
			}
			if m.CellCenter(p) != center {
				t.Fatalf("size %v: CellCenter disagrees with GridToWorld", size)
			}
			if got := m.WorldToGrid(m.GridToWorld(Cell{i - 100, 100 - i})); got != (Cell{i - 100, 100 - i}) {
				t.Fatalf("size %v: grid round trip failed for %d", size, i)
			}
		}
	}
}

func TestSetTileSizeAffectsFutureConversions(t *testing.T) {
	m := NewMapper(1.0)
	p := geom.Vec3{X: 3, Z: 3}
	if c := m.WorldToGrid(p); c != (Cell{3, 3}) {
		t.Fatalf("expected (3, 3), got %+v", c)
	}
	if err := m.SetTileSize(2); err != nil {
		t.Fatalf("set tile size: %v", err)
	}
	if c := m.WorldToGrid(p); c != (Cell{1, 1}) {
		t.Fatalf("expected (1, 1) after resize, got %+v", c)
	}
	if err := m.SetTileSize(0); !errors.Is(err, ErrInvalidTileSize) {
		t.Fatalf("expected ErrInvalidTileSize, got %v", err)
	}
	if m.TileSize() != 2 {
		t.Fatalf("expected rejected size to leave tile size unchanged")
	}
}

func TestPlaneHelpersUsePlaneY(t *testing.T) {
	m := NewMapper(1.0)
	if c := m.PlaneToGrid(geom.Vec2{X: 2.7, Y: 3.2}); c != (Cell{2, 3}) {
		t.Fatalf("expected plane Y to select tile Y, got %+v", c)
	}
	if p := m.GridToPlane(Cell{2, 3}); p != (geom.Vec2{X: 2.5, Y: 3.5}) {
		t.Fatalf("expected (2.5, 3.5), got %+v", p)
	}
}
