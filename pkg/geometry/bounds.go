package geometry

import "math"

// BoundingBox represents an axis-aligned 2D bounding box
type BoundingBox struct {
	Min Vector2
	Max Vector2
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector2{X: math.MaxFloat64, Y: math.MaxFloat64},
		Max: Vector2{X: -math.MaxFloat64, Y: -math.MaxFloat64},
	}
}

// Extend expands the bounding box to include a point
func (b *BoundingBox) Extend(point Vector2) {
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// Merge expands the bounding box to include another box
func (b *BoundingBox) Merge(other BoundingBox) {
	if other.Empty() {
		return
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
}

// Pad grows the box by margin on every side
func (b BoundingBox) Pad(margin float64) BoundingBox {
	return BoundingBox{
		Min: Vector2{X: b.Min.X - margin, Y: b.Min.Y - margin},
		Max: Vector2{X: b.Max.X + margin, Y: b.Max.Y + margin},
	}
}

// Empty reports whether no point was added yet
func (b BoundingBox) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// Overlaps reports whether two boxes share at least one point
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	return b.Min.X <= other.Max.X && other.Min.X <= b.Max.X &&
		b.Min.Y <= other.Max.Y && other.Min.Y <= b.Max.Y
}

// Contains reports whether the point lies inside or on the border of the box
func (b BoundingBox) Contains(p Vector2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// ContainsStrict reports whether the point lies strictly inside the box
func (b BoundingBox) ContainsStrict(p Vector2) bool {
	return p.X > b.Min.X && p.X < b.Max.X && p.Y > b.Min.Y && p.Y < b.Max.Y
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector2 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector2 {
	return Vector2{
		X: (b.Min.X + b.Max.X) / 2.0,
		Y: (b.Min.Y + b.Max.Y) / 2.0,
	}
}

// Diagonal returns the length of the bounding box diagonal
func (b BoundingBox) Diagonal() float64 {
	return b.Size().Length()
}

// Area returns the area of the bounding box
func (b BoundingBox) Area() float64 {
	size := b.Size()
	return size.X * size.Y
}
