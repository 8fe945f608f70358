package geometry

import (
	"fmt"
	"math"
)

// Circle is a center/radius pair in the plane
type Circle struct {
	Center Vector2
	Radius float64
}

// CircleFit represents the result of fitting a circle to points
type CircleFit struct {
	Circle
	StdDev float64 // Standard deviation of fit (quality measure)
}

// CircleThrough returns the circle passing through three points.
//
// Uses the 3-point determinant formula:
//
//	D = 2(x₁(y₂-y₃) + x₂(y₃-y₁) + x₃(y₁-y₂))
//	cx = ((x₁²+y₁²)(y₂-y₃) + (x₂²+y₂²)(y₃-y₁) + (x₃²+y₃²)(y₁-y₂)) / D
//	cy = ((x₁²+y₁²)(x₃-x₂) + (x₂²+y₂²)(x₁-x₃) + (x₃²+y₃²)(x₂-x₁)) / D
func CircleThrough(p1, p2, p3 Vector2) (Circle, error) {
	x1, y1 := p1.X, p1.Y
	x2, y2 := p2.X, p2.Y
	x3, y3 := p3.X, p3.Y

	D := 2.0 * (x1*(y2-y3) + x2*(y3-y1) + x3*(y1-y2))
	if math.Abs(D) < 1e-10 {
		return Circle{}, fmt.Errorf("points are collinear")
	}

	s1 := x1*x1 + y1*y1
	s2 := x2*x2 + y2*y2
	s3 := x3*x3 + y3*y3

	center := Vector2{
		X: (s1*(y2-y3) + s2*(y3-y1) + s3*(y1-y2)) / D,
		Y: (s1*(x3-x2) + s2*(x1-x3) + s3*(x2-x1)) / D,
	}
	return Circle{Center: center, Radius: center.Distance(p1)}, nil
}

// FitCircle fits a circle through the first, middle and last point and
// reports how far the remaining points deviate from it.
func FitCircle(points []Vector2) (*CircleFit, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("need at least 3 points to fit a circle")
	}

	c, err := CircleThrough(points[0], points[len(points)/2], points[len(points)-1])
	if err != nil {
		return nil, err
	}

	var sumError float64
	for _, p := range points {
		d := p.Distance(c.Center) - c.Radius
		sumError += d * d
	}

	return &CircleFit{
		Circle: c,
		StdDev: math.Sqrt(sumError / float64(len(points))),
	}, nil
}

// BulgeArc converts a polyline bulge (tan of a quarter of the included
// angle, positive for counter-clockwise) between two vertices into the
// supporting circle. clockwise reports the traversal sense.
func BulgeArc(start, end Vector2, bulge float64) (c Circle, clockwise bool, err error) {
	chord := end.Sub(start)
	if chord.Length2() < EPS2 {
		return Circle{}, false, fmt.Errorf("bulge on a zero length chord")
	}
	if math.Abs(bulge) < EPS {
		return Circle{}, false, fmt.Errorf("bulge %g describes a straight line", bulge)
	}

	sagitta := bulge * chord.Length() / 2
	mid := start.Add(end).Mul(0.5).Sub(chord.Normalize().Orthogonal().Mul(sagitta))

	c, err = CircleThrough(start, mid, end)
	if err != nil {
		return Circle{}, false, err
	}
	return c, bulge < 0, nil
}
