package toolpath

import (
	"fmt"
	"math"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
)

// Entity is a 2D CAD primitive accepted by FromLayer
type Entity interface {
	StartPoint() geometry.Vector2
	EndPoint() geometry.Vector2
}

// LineEntity is a straight line
type LineEntity struct {
	Start geometry.Vector2
	End   geometry.Vector2
}

func (e LineEntity) StartPoint() geometry.Vector2 { return e.Start }
func (e LineEntity) EndPoint() geometry.Vector2   { return e.End }

// CircleEntity is a full circle
type CircleEntity struct {
	Center geometry.Vector2
	Radius float64
}

// StartPoint returns the point at angle zero, where the circle starts and ends
func (e CircleEntity) StartPoint() geometry.Vector2 {
	return geometry.NewVector2(e.Center.X+e.Radius, e.Center.Y)
}

func (e CircleEntity) EndPoint() geometry.Vector2 { return e.StartPoint() }

// ArcEntity is a circular arc. Angles are in degrees; Clockwise selects the
// traversal sense from StartAngle to EndAngle.
type ArcEntity struct {
	Center     geometry.Vector2
	Radius     float64
	StartAngle float64
	EndAngle   float64
	Clockwise  bool
}

func (e ArcEntity) StartPoint() geometry.Vector2 {
	return geometry.Polar(e.Center, e.Radius, radians(e.StartAngle))
}

func (e ArcEntity) EndPoint() geometry.Vector2 {
	return geometry.Polar(e.Center, e.Radius, radians(e.EndAngle))
}

// PolylineEntity is a chain of vertices. Bulges, when present, hold for each
// vertex the bulge of the piece that starts there (zero for straight pieces).
type PolylineEntity struct {
	Vertices []geometry.Vector2
	Bulges   []float64
	Closed   bool
	Reversed bool
}

func (e PolylineEntity) StartPoint() geometry.Vector2 {
	pts, _ := e.points()
	if len(pts) == 0 {
		return geometry.Vector2{}
	}
	return pts[0]
}

func (e PolylineEntity) EndPoint() geometry.Vector2 {
	pts, _ := e.points()
	if len(pts) == 0 {
		return geometry.Vector2{}
	}
	return pts[len(pts)-1]
}

// points returns the vertices in traversal order with the bulge of the piece
// starting at each of them
func (e PolylineEntity) points() ([]geometry.Vector2, []float64) {
	n := len(e.Vertices)
	pts := make([]geometry.Vector2, n, n+1)
	copy(pts, e.Vertices)
	bulges := make([]float64, n, n+1)
	copy(bulges, e.Bulges)

	if e.Closed && n > 2 && !geometry.Eq(pts[0], pts[n-1]) {
		pts = append(pts, pts[0])
		bulges = append(bulges, 0)
		n++
	}
	if !e.Reversed || n == 0 {
		return pts, bulges
	}

	rpts := make([]geometry.Vector2, n)
	rbulges := make([]float64, n)
	for k := 0; k < n; k++ {
		rpts[k] = pts[n-1-k]
		if k < n-1 {
			rbulges[k] = -bulges[n-2-k]
		}
	}
	return rpts, rbulges
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FromLayer builds an unordered path from CAD primitives. Degenerate lines
// and polyline pieces are skipped.
func FromLayer(name string, entities []Entity) *Path {
	path := NewPath(name)

	for _, entity := range entities {
		switch e := entity.(type) {
		case LineEntity:
			if geometry.Eq(e.Start, e.End) {
				continue
			}
			path.Append(NewLine(e.Start, e.End))

		case CircleEntity:
			if e.Radius < geometry.EPS {
				continue
			}
			start := e.StartPoint()
			path.Append(NewArcAngles(ArcCCW, start, start, e.Center, e.Radius, 0, geometry.PI2))

		case ArcEntity:
			if e.Radius < geometry.EPS {
				continue
			}
			kind := ArcCCW
			if e.Clockwise {
				kind = ArcCW
			}
			path.Append(NewArcAngles(kind, e.StartPoint(), e.EndPoint(), e.Center, e.Radius,
				radians(e.StartAngle), radians(e.EndAngle)))

		case PolylineEntity:
			pts, bulges := e.points()
			if len(pts) < 2 {
				continue
			}
			start, bulge := pts[0], bulges[0]
			for i := 1; i < len(pts); i++ {
				end := pts[i]
				if geometry.Eq(start, end) {
					continue
				}
				path.Append(bulgeSegment(start, end, bulge))
				start, bulge = end, bulges[i]
			}

		default:
			Logger().Warn("unsupported entity", "layer", name, "type", fmt.Sprintf("%T", entity))
		}
	}

	return path
}

// bulgeSegment returns a line, or an arc when the polyline piece has a bulge
func bulgeSegment(start, end geometry.Vector2, bulge float64) *Segment {
	if math.Abs(bulge) < geometry.EPS {
		return NewLine(start, end)
	}
	c, clockwise, err := geometry.BulgeArc(start, end, bulge)
	if err != nil {
		return NewLine(start, end)
	}
	kind := ArcCCW
	if clockwise {
		kind = ArcCW
	}
	return NewArc(kind, start, end, c.Center)
}
