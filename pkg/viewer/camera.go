package viewer

import (
	"math"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
)

// Camera maps drawing coordinates (mm, y up) to image pixels (y down)
type Camera struct {
	Target geometry.Vector2 // drawing point shown at the image centre
	Scale  float64          // pixels per drawing unit
	Width  float64
	Height float64
}

// NewCamera creates a camera that fits a bounding box into the image,
// keeping margin pixels free on every side
func NewCamera(bbox geometry.BoundingBox, width, height int, margin float64) *Camera {
	c := &Camera{
		Width:  float64(width),
		Height: float64(height),
		Scale:  1,
	}
	if bbox.Empty() {
		return c
	}

	c.Target = bbox.Center()
	size := bbox.Size()
	usableW := math.Max(1, c.Width-2*margin)
	usableH := math.Max(1, c.Height-2*margin)

	switch {
	case size.X < geometry.EPS && size.Y < geometry.EPS:
		c.Scale = 1
	case size.X < geometry.EPS:
		c.Scale = usableH / size.Y
	case size.Y < geometry.EPS:
		c.Scale = usableW / size.X
	default:
		c.Scale = math.Min(usableW/size.X, usableH/size.Y)
	}
	return c
}

// Zoom scales around the target
func (c *Camera) Zoom(factor float64) {
	c.Scale *= factor
	if c.Scale < 1e-6 {
		c.Scale = 1e-6
	}
}

// Project converts a drawing point to pixel coordinates
func (c *Camera) Project(p geometry.Vector2) (float64, float64) {
	x := (p.X-c.Target.X)*c.Scale + c.Width/2
	y := c.Height/2 - (p.Y-c.Target.Y)*c.Scale
	return x, y
}

// Unproject converts pixel coordinates back to a drawing point
func (c *Camera) Unproject(x, y float64) geometry.Vector2 {
	return geometry.Vector2{
		X: (x-c.Width/2)/c.Scale + c.Target.X,
		Y: (c.Height/2-y)/c.Scale + c.Target.Y,
	}
}
