package client

import "github.com/farmgame/client/internal/geom"

// Camera maps the play plane onto the screen. Plane +Y points up the
// screen. The camera snaps to its target each frame.
type Camera struct {
	Center        geom.Vec2 // plane point drawn at the screen centre
	PixelsPerUnit float64
	width, height int
}

func NewCamera(width, height int, pixelsPerUnit float64) *Camera {
	if pixelsPerUnit <= 0 {
		pixelsPerUnit = 1
	}
	return &Camera{PixelsPerUnit: pixelsPerUnit, width: width, height: height}
}

func (c *Camera) Follow(target geom.Vec2) { c.Center = target }

// Resize updates the viewport size in pixels.
func (c *Camera) Resize(width, height int) {
	c.width, c.height = width, height
}

func (c *Camera) Size() (int, int) { return c.width, c.height }

// ScreenToPlane returns the plane point under pixel (sx, sy).
func (c *Camera) ScreenToPlane(sx, sy int) geom.Vec2 {
	return geom.Vec2{
		X: c.Center.X + (float64(sx)-float64(c.width)/2)/c.PixelsPerUnit,
		Y: c.Center.Y - (float64(sy)-float64(c.height)/2)/c.PixelsPerUnit,
	}
}

// PlaneToScreen returns the pixel position of p.
func (c *Camera) PlaneToScreen(p geom.Vec2) (float64, float64) {
	return float64(c.width)/2 + (p.X-c.Center.X)*c.PixelsPerUnit,
		float64(c.height)/2 - (p.Y-c.Center.Y)*c.PixelsPerUnit
}

// Visible reports whether p lies within margin pixels of the viewport.
func (c *Camera) Visible(p geom.Vec2, margin float64) bool {
	x, y := c.PlaneToScreen(p)
	return x >= -margin && y >= -margin &&
		x <= float64(c.width)+margin && y <= float64(c.height)+margin
}
