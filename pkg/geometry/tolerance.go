package geometry

import "math"

// Tolerances shared by every comparison in the toolpath engine.
const (
	EPS  = 0.0001
	EPS2 = EPS * EPS
	PI2  = 2 * math.Pi
)

// Eq reports whether two points coincide. The error bound scales with the
// magnitude of the operands and has an absolute floor of EPS2.
func Eq(a, b Vector2) bool {
	d2 := a.Sub(b).Length2()
	sx := math.Abs(a.X) + math.Abs(b.X)
	sy := math.Abs(a.Y) + math.Abs(b.Y)
	return d2 < EPS2*(sx*sx+sy*sy)+EPS2
}
