// Package geom holds the small vector types shared by movement, grid and
// client code.
//
// The playfield is a plane. Plane coordinates are Vec2{X, Y}; the same point
// in world space is Vec3{X, 0, Z: Y}. Lift and Plane are the only conversions
// between the two, so every package agrees on which axis is which.
package geom

import "math"

// Vec2 is a point or direction on the play plane.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a world-space point. Y is height and stays 0 for plane objects.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero2 = Vec2{}
	Down  = Vec2{X: 0, Y: -1}
)

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }
func (v Vec2) Lift() Vec3 { return Vec3{X: v.X, Y: 0, Z: v.Y} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Normalize returns the unit vector in v's direction, or zero for a
// (near-)zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Zero2
	}
	return Vec2{v.X / l, v.Y / l}
}

// ApproxEqual compares component-wise within eps.
func (v Vec2) ApproxEqual(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// MoveTowards steps from v toward target by at most maxStep without
// overshooting.
func (v Vec2) MoveTowards(target Vec2, maxStep float64) Vec2 {
	delta := target.Sub(v)
	dist := delta.Len()
	if dist <= maxStep || dist == 0 {
		return target
	}
	return v.Add(delta.Scale(maxStep / dist))
}

// Plane drops the height axis.
func (v Vec3) Plane() Vec2 { return Vec2{X: v.X, Y: v.Z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
