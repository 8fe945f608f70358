package geometry

import (
	"math"
	"testing"
)

func TestVector2Add(t *testing.T) {
	v1 := NewVector2(1, 2)
	v2 := NewVector2(4, 5)
	result := v1.Add(v2)

	expected := NewVector2(5, 7)
	if result != expected {
		t.Errorf("Add failed: expected %v, got %v", expected, result)
	}
}

func TestVector2Sub(t *testing.T) {
	v1 := NewVector2(5, 7)
	v2 := NewVector2(1, 2)
	result := v1.Sub(v2)

	expected := NewVector2(4, 5)
	if result != expected {
		t.Errorf("Sub failed: expected %v, got %v", expected, result)
	}
}

func TestVector2Length(t *testing.T) {
	v := NewVector2(3, 4)
	length := v.Length()

	expected := 5.0
	if math.Abs(length-expected) > 1e-10 {
		t.Errorf("Length failed: expected %v, got %v", expected, length)
	}
	if math.Abs(v.Length2()-25) > 1e-10 {
		t.Errorf("Length2 failed: expected 25, got %v", v.Length2())
	}
}

func TestVector2Distance(t *testing.T) {
	v1 := NewVector2(0, 0)
	v2 := NewVector2(3, 4)
	distance := v1.Distance(v2)

	expected := 5.0
	if math.Abs(distance-expected) > 1e-10 {
		t.Errorf("Distance failed: expected %v, got %v", expected, distance)
	}
}

func TestVector2Normalize(t *testing.T) {
	v := NewVector2(3, 4)
	normalized := v.Normalize()

	if math.Abs(normalized.Length()-1.0) > 1e-10 {
		t.Errorf("Normalize failed: expected length 1, got %v", normalized.Length())
	}

	zero := Vector2{}.Normalize()
	if zero != (Vector2{}) {
		t.Errorf("Normalize of zero vector failed: got %v", zero)
	}
}

func TestVector2Cross(t *testing.T) {
	v1 := NewVector2(1, 0)
	v2 := NewVector2(0, 1)

	if v1.Cross(v2) != 1 {
		t.Errorf("Cross failed: expected 1, got %v", v1.Cross(v2))
	}
	if v2.Cross(v1) != -1 {
		t.Errorf("Cross failed: expected -1, got %v", v2.Cross(v1))
	}
}

func TestVector2Orthogonal(t *testing.T) {
	v := NewVector2(1, 0)
	o := v.Orthogonal()

	expected := NewVector2(0, 1)
	if o != expected {
		t.Errorf("Orthogonal failed: expected %v, got %v", expected, o)
	}
	if v.Dot(o) != 0 {
		t.Errorf("Orthogonal is not perpendicular: dot %v", v.Dot(o))
	}
}

func TestVector2Dot(t *testing.T) {
	v1 := NewVector2(1, 2)
	v2 := NewVector2(4, 5)
	result := v1.Dot(v2)

	expected := 14.0
	if math.Abs(result-expected) > 1e-10 {
		t.Errorf("Dot failed: expected %v, got %v", expected, result)
	}
}

func TestPolar(t *testing.T) {
	p := Polar(NewVector2(1, 1), 2, math.Pi/2)

	if math.Abs(p.X-1) > 1e-10 || math.Abs(p.Y-3) > 1e-10 {
		t.Errorf("Polar failed: expected (1, 3), got %v", p)
	}
}

func TestEq(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector2
		want bool
	}{
		{"identical", NewVector2(1, 2), NewVector2(1, 2), true},
		{"below absolute floor", NewVector2(0, 0), NewVector2(EPS/2, 0), true},
		{"above absolute floor", NewVector2(0, 0), NewVector2(EPS*2, 0), false},
		{"relative at large magnitude", NewVector2(1000, 0), NewVector2(1000.01, 0), true},
		{"clearly apart", NewVector2(1000, 0), NewVector2(1001, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eq(tt.a, tt.b); got != tt.want {
				t.Errorf("Eq(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
