package geometry

import "math"

// Vector2 represents a 2D point or vector
type Vector2 struct {
	X, Y float64
}

// NewVector2 creates a new 2D vector
func NewVector2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Polar returns the point at angle phi (radians) on a circle of the given radius
func Polar(center Vector2, radius, phi float64) Vector2 {
	return Vector2{
		X: center.X + radius*math.Cos(phi),
		Y: center.Y + radius*math.Sin(phi),
	}
}

// Add returns the sum of two vectors
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the difference between two vectors
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul multiplies the vector by a scalar
func (v Vector2) Mul(scalar float64) Vector2 {
	return Vector2{X: v.X * scalar, Y: v.Y * scalar}
}

// Neg returns the vector pointing the opposite way
func (v Vector2) Neg() Vector2 {
	return Vector2{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product of two vectors
func (v Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the cross product of two vectors
func (v Vector2) Cross(other Vector2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Length returns the magnitude of the vector
func (v Vector2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Length2 returns the squared magnitude of the vector
func (v Vector2) Length2() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the distance between two points
func (v Vector2) Distance(other Vector2) float64 {
	return v.Sub(other).Length()
}

// Normalize returns a unit vector in the same direction
func (v Vector2) Normalize() Vector2 {
	length := v.Length()
	if length == 0 {
		return Vector2{}
	}
	return v.Mul(1.0 / length)
}

// Orthogonal returns the vector rotated by +90 degrees (left of the direction of travel)
func (v Vector2) Orthogonal() Vector2 {
	return Vector2{X: -v.Y, Y: v.X}
}

// Angle returns the direction of the vector in radians, in (-pi, pi]
func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Min returns a vector with the minimum components of two vectors
func (v Vector2) Min(other Vector2) Vector2 {
	return Vector2{X: math.Min(v.X, other.X), Y: math.Min(v.Y, other.Y)}
}

// Max returns a vector with the maximum components of two vectors
func (v Vector2) Max(other Vector2) Vector2 {
	return Vector2{X: math.Max(v.X, other.X), Y: math.Max(v.Y, other.Y)}
}
