package client

import (
	"math"
	"testing"

	"github.com/farmgame/client/internal/geom"
)

func TestCameraCentre(t *testing.T) {
	c := NewCamera(800, 600, 32)
	c.Follow(geom.Vec2{X: 10, Y: -4})
	if p := c.ScreenToPlane(400, 300); p != (geom.Vec2{X: 10, Y: -4}) {
		t.Fatalf("screen centre must map to the followed point, got %+v", p)
	}
	x, y := c.PlaneToScreen(geom.Vec2{X: 11, Y: -3})
	if x != 432 || y != 268 {
		t.Fatalf("expected (432, 268), got (%v, %v)", x, y)
	}
}

func TestCameraRoundTrip(t *testing.T) {
	c := NewCamera(640, 480, 24)
	c.Follow(geom.Vec2{X: -2.5, Y: 7})
	for _, px := range [][2]int{{0, 0}, {639, 479}, {320, 10}, {13, 400}} {
		p := c.ScreenToPlane(px[0], px[1])
		x, y := c.PlaneToScreen(p)
		if math.Abs(x-float64(px[0])) > 1e-9 || math.Abs(y-float64(px[1])) > 1e-9 {
			t.Fatalf("round trip of %v gave (%v, %v)", px, x, y)
		}
	}
}

func TestCameraVisible(t *testing.T) {
	c := NewCamera(100, 100, 10)
	if !c.Visible(geom.Vec2{X: 4.9}, 0) {
		t.Fatal("point inside the viewport must be visible")
	}
	if c.Visible(geom.Vec2{X: 6}, 0) {
		t.Fatal("point outside the viewport must not be visible")
	}
	if !c.Visible(geom.Vec2{X: 6}, 20) {
		t.Fatal("margin must extend visibility")
	}
}

func TestCameraRejectsNonPositiveScale(t *testing.T) {
	if c := NewCamera(10, 10, 0); c.PixelsPerUnit != 1 {
		t.Fatalf("expected fallback scale 1, got %v", c.PixelsPerUnit)
	}
}
