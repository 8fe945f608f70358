package toolpath

import (
	"fmt"
	"math"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
)

// Kind is the geometric type of a Segment
type Kind int

const (
	Line Kind = iota
	ArcCW
	ArcCCW
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "LINE"
	case ArcCW:
		return "CW"
	case ArcCCW:
		return "CCW"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsArc reports whether the kind describes a circular arc
func (k Kind) IsArc() bool {
	return k == ArcCW || k == ArcCCW
}

// Segment is a straight line or a circular arc with a traversal direction.
//
// Start, End and the arc fields are kept consistent with the cached chord and
// bounding box by the methods of this package. Code outside the package
// should treat them as read-only.
type Segment struct {
	Kind  Kind
	Start geometry.Vector2
	End   geometry.Vector2

	// Cross is set when End is a self-intersection point of the owning path.
	Cross bool

	Center   geometry.Vector2
	Radius   float64
	StartPhi float64 // radians
	EndPhi   float64 // radians

	ab   geometry.Vector2
	bbox geometry.BoundingBox
}

// NewLine creates a straight segment
func NewLine(start, end geometry.Vector2) *Segment {
	s := &Segment{Kind: Line, Start: start, End: end}
	s.update()
	return s
}

// NewArc creates an arc around center. The radius is taken from the start
// point and both angles from atan2, so start and end must differ; use
// NewArcAngles for full circles.
func NewArc(kind Kind, start, end, center geometry.Vector2) *Segment {
	return NewArcAngles(kind, start, end, center,
		start.Distance(center),
		start.Sub(center).Angle(),
		end.Sub(center).Angle())
}

// NewArcAngles creates an arc with an explicit radius and angle range
func NewArcAngles(kind Kind, start, end, center geometry.Vector2, radius, startPhi, endPhi float64) *Segment {
	if !kind.IsArc() {
		return NewLine(start, end)
	}
	s := &Segment{
		Kind:     kind,
		Start:    start,
		End:      end,
		Center:   center,
		Radius:   radius,
		StartPhi: startPhi,
		EndPhi:   endPhi,
	}
	s.normalizeAngles()
	s.update()
	return s
}

// Clone returns an independent copy of the segment
func (s *Segment) Clone() *Segment {
	c := *s
	return &c
}

// AB returns the chord vector End - Start
func (s *Segment) AB() geometry.Vector2 {
	return s.ab
}

// Bounds returns the extents of the segment without the tolerance padding
func (s *Segment) Bounds() geometry.BoundingBox {
	return s.bbox.Pad(-geometry.EPS)
}

// normalizeAngles makes the angular span the traversed arc:
// counter-clockwise arcs keep EndPhi >= StartPhi, clockwise arcs StartPhi >= EndPhi.
func (s *Segment) normalizeAngles() {
	switch s.Kind {
	case ArcCCW:
		if s.EndPhi < s.StartPhi {
			s.EndPhi += geometry.PI2
		}
	case ArcCW:
		if s.StartPhi < s.EndPhi {
			s.StartPhi += geometry.PI2
		}
	}
}

// span returns the angle range covered by the arc as lo <= hi
func (s *Segment) span() (lo, hi float64) {
	if s.Kind == ArcCW {
		return s.EndPhi, s.StartPhi
	}
	return s.StartPhi, s.EndPhi
}

// update recomputes the chord and the padded bounding box
func (s *Segment) update() {
	s.ab = s.End.Sub(s.Start)

	bbox := geometry.NewBoundingBox()
	bbox.Extend(s.Start)
	bbox.Extend(s.End)
	if s.Kind.IsArc() {
		lo, hi := s.span()
		for k := 0; k < 4; k++ {
			a := float64(k) * math.Pi / 2
			a += geometry.PI2 * math.Ceil((lo-a)/geometry.PI2)
			if a <= hi {
				bbox.Extend(geometry.Polar(s.Center, s.Radius, a))
			}
		}
	}
	s.bbox = bbox.Pad(geometry.EPS)
}

// Sweep returns the signed traversed angle, positive for counter-clockwise arcs
func (s *Segment) Sweep() float64 {
	if !s.Kind.IsArc() {
		return 0
	}
	return s.EndPhi - s.StartPhi
}

// Length returns the traversed length of the segment
func (s *Segment) Length() float64 {
	if s.Kind == Line {
		return s.ab.Length()
	}
	return s.Radius * math.Abs(s.Sweep())
}

// Invert reverses the traversal direction in place
func (s *Segment) Invert() *Segment {
	s.Start, s.End = s.End, s.Start
	switch s.Kind {
	case ArcCW:
		s.Kind = ArcCCW
	case ArcCCW:
		s.Kind = ArcCW
	}
	if s.Kind.IsArc() {
		s.StartPhi, s.EndPhi = s.EndPhi, s.StartPhi
		s.normalizeAngles()
	}
	s.update()
	return s
}

// OrthogonalAtStart returns the unit normal at the start point. Offsetting
// along it by a positive distance moves to the left of the direction of travel.
func (s *Segment) OrthogonalAtStart() geometry.Vector2 {
	return s.orthogonal(s.Start)
}

// OrthogonalAtEnd returns the unit normal at the end point
func (s *Segment) OrthogonalAtEnd() geometry.Vector2 {
	return s.orthogonal(s.End)
}

func (s *Segment) orthogonal(p geometry.Vector2) geometry.Vector2 {
	if s.Kind == Line {
		return s.ab.Orthogonal().Normalize()
	}
	o := p.Sub(s.Center).Normalize()
	if s.Kind == ArcCCW {
		return o.Neg()
	}
	return o
}

// Inside is a loose membership test used while splitting paths. Lines test
// strict containment in the padded bounding box, arcs test the angle of p
// against the arc span with a small tolerance band.
func (s *Segment) Inside(p geometry.Vector2) bool {
	if s.Kind == Line {
		return s.bbox.ContainsStrict(p)
	}
	return s.insideArc(p)
}

func (s *Segment) band() float64 {
	if s.Radius > geometry.EPS {
		return geometry.EPS / s.Radius
	}
	return geometry.EPS
}

// wrapAngle shifts phi by full turns into [from, from+2pi)
func wrapAngle(phi, from float64) float64 {
	for phi < from {
		phi += geometry.PI2
	}
	for phi >= from+geometry.PI2 {
		phi -= geometry.PI2
	}
	return phi
}

func (s *Segment) insideArc(p geometry.Vector2) bool {
	lo, hi := s.span()
	band := s.band()
	phi := wrapAngle(p.Sub(s.Center).Angle(), lo-band)
	if phi <= hi+band {
		return true
	}
	return geometry.Eq(s.Start, p) || geometry.Eq(s.End, p)
}

// Intersect returns up to two intersection points with other. A nil result
// means no intersection for that slot.
func (s *Segment) Intersect(other *Segment) (p1, p2 *geometry.Vector2) {
	if !s.bbox.Overlaps(other.bbox) {
		return nil, nil
	}

	switch {
	case s.Kind == Line && other.Kind == Line:
		return s.intersectLines(other), nil
	case s.Kind == Line:
		return s.intersectLineArc(other)
	case other.Kind == Line:
		return other.intersectLineArc(s)
	default:
		return s.intersectArcs(other)
	}
}

// intersectLines solves start + t*AB for both infinite lines and accepts the
// crossing when it lies in both bounding boxes.
func (s *Segment) intersectLines(other *Segment) *geometry.Vector2 {
	dd := -s.ab.X*other.ab.Y + s.ab.Y*other.ab.X
	if math.Abs(dd) < geometry.EPS2 {
		return nil
	}

	d := other.Start.Sub(s.Start)
	t := (-d.X*other.ab.Y + d.Y*other.ab.X) / dd
	p := s.Start.Add(s.ab.Mul(t))

	if !s.bbox.Contains(p) || !other.bbox.Contains(p) {
		return nil
	}
	return &p
}

// intersectLineArc intersects the line s with arc. Roots close to the line
// ends snap to the exact end points.
func (s *Segment) intersectLineArc(arc *Segment) (p1, p2 *geometry.Vector2) {
	a := s.ab.Length2()
	if a < geometry.EPS2 {
		return nil, nil
	}
	ca := s.Start.Sub(arc.Center)
	b := 2 * s.ab.Dot(ca)
	c := ca.Length2() - arc.Radius*arc.Radius

	t1, t2, ok := quadratic(b/a, c/a)
	if !ok {
		return nil, nil
	}

	point := func(t float64) *geometry.Vector2 {
		if t < -geometry.EPS || t > 1+geometry.EPS {
			return nil
		}
		var p geometry.Vector2
		switch {
		case t <= geometry.EPS:
			p = s.Start
		case t >= 1-geometry.EPS:
			p = s.End
		default:
			p = s.Start.Add(s.ab.Mul(t))
		}
		if !arc.insideArc(p) {
			return nil
		}
		return &p
	}

	return point(t1), point(t2)
}

// intersectArcs uses the radical line of both circles
func (s *Segment) intersectArcs(other *Segment) (p1, p2 *geometry.Vector2) {
	cc := other.Center.Sub(s.Center)
	d := cc.Length()
	r1, r2 := s.Radius, other.Radius
	if d <= geometry.EPS2 || d >= r1+r2 {
		return nil, nil
	}
	cc = cc.Mul(1 / d)

	x := (r1*r1 - r2*r2 + d*d) / (2 * d)
	y2 := r1*r1 - x*x
	if y2 < 0 {
		// one circle lies inside the other
		return nil, nil
	}
	y := math.Sqrt(y2)

	base := s.Center.Add(cc.Mul(x))
	o := cc.Orthogonal()

	accept := func(p geometry.Vector2) *geometry.Vector2 {
		if s.insideArc(p) && other.insideArc(p) {
			return &p
		}
		return nil
	}
	return accept(base.Add(o.Mul(y))), accept(base.Sub(o.Mul(y)))
}

// quadratic solves x² + bx + c = 0 and returns the roots in ascending order
func quadratic(b, c float64) (x1, x2 float64, ok bool) {
	d := b*b - 4*c
	if d < 0 {
		if d < -geometry.EPS2 {
			return 0, 0, false
		}
		d = 0
	}
	sd := math.Sqrt(d)

	var q float64
	if b >= 0 {
		q = -(b + sd) / 2
	} else {
		q = -(b - sd) / 2
	}
	if q == 0 {
		return 0, 0, true
	}
	x1, x2 = q, c/q
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	return x1, x2, true
}

// Distance returns the shortest distance from p to the segment
func (s *Segment) Distance(p geometry.Vector2) float64 {
	if s.Kind == Line {
		ab2 := s.ab.Length2()
		if ab2 < geometry.EPS2 {
			return p.Distance(s.Start)
		}
		t := p.Sub(s.Start).Dot(s.ab) / ab2
		switch {
		case t <= 0:
			return p.Distance(s.Start)
		case t >= 1:
			return p.Distance(s.End)
		}
		return p.Distance(s.Start.Add(s.ab.Mul(t)))
	}

	lo, hi := s.span()
	phi := wrapAngle(p.Sub(s.Center).Angle(), lo)
	if phi <= hi {
		return math.Abs(p.Distance(s.Center) - s.Radius)
	}

	// outside the span: pick the angularly nearer end point
	nearHi := phi-hi <= lo+geometry.PI2-phi
	if nearHi == (s.Kind == ArcCCW) {
		return p.Distance(s.End)
	}
	return p.Distance(s.Start)
}

// SplitKind tells what Split did
type SplitKind int

const (
	// NoSplitAtStart means the point is the start of the segment; the
	// previous segment of the path ends at the crossing.
	NoSplitAtStart SplitKind = iota
	// AlreadySplitAtEnd means the point is the end of the segment, which is
	// now marked as a crossing.
	AlreadySplitAtEnd
	// NewTrailingSegment means the segment was shortened and Segment holds
	// the remainder that must follow it in the path.
	NewTrailingSegment
)

func (k SplitKind) String() string {
	switch k {
	case NoSplitAtStart:
		return "NoSplitAtStart"
	case AlreadySplitAtEnd:
		return "AlreadySplitAtEnd"
	case NewTrailingSegment:
		return "NewTrailingSegment"
	}
	return fmt.Sprintf("SplitKind(%d)", int(k))
}

// SplitResult is the outcome of Segment.Split
type SplitResult struct {
	Kind    SplitKind
	Segment *Segment
}

// Split cuts the segment at p. The segment keeps the part up to p and the
// returned trailing segment, if any, runs from p to the old end and inherits
// the cross flag.
func (s *Segment) Split(p geometry.Vector2) SplitResult {
	if geometry.Eq(p, s.Start) {
		return SplitResult{Kind: NoSplitAtStart}
	}
	if geometry.Eq(p, s.End) {
		s.Cross = true
		return SplitResult{Kind: AlreadySplitAtEnd}
	}

	tail := &Segment{Kind: s.Kind, Start: p, End: s.End, Cross: s.Cross}
	if s.Kind.IsArc() {
		phi := s.angleOf(p)
		tail.Center = s.Center
		tail.Radius = s.Radius
		tail.StartPhi = phi
		tail.EndPhi = s.EndPhi
		s.EndPhi = phi
		tail.normalizeAngles()
		s.normalizeAngles()
	}
	s.End = p
	s.Cross = false
	s.update()
	tail.update()

	return SplitResult{Kind: NewTrailingSegment, Segment: tail}
}

// angleOf returns the angle of p expressed inside the arc span
func (s *Segment) angleOf(p geometry.Vector2) float64 {
	lo, hi := s.span()
	band := s.band()
	phi := wrapAngle(p.Sub(s.Center).Angle(), lo-band)
	switch {
	case phi < lo:
		phi = lo
	case phi > hi:
		if phi-hi < lo+geometry.PI2-phi {
			phi = hi
		} else {
			phi = lo
		}
	}
	return phi
}

// Flatten approximates the segment by points no further apart than step
// along the curve. The first point is Start and the last is End.
func (s *Segment) Flatten(step float64) []geometry.Vector2 {
	if s.Kind == Line || step <= 0 {
		return []geometry.Vector2{s.Start, s.End}
	}
	n := int(math.Ceil(s.Length() / step))
	if n < 2 {
		n = 2
	}
	sweep := s.Sweep()
	points := make([]geometry.Vector2, 0, n+1)
	points = append(points, s.Start)
	for i := 1; i < n; i++ {
		points = append(points, geometry.Polar(s.Center, s.Radius, s.StartPhi+sweep*float64(i)/float64(n)))
	}
	return append(points, s.End)
}

func (s *Segment) String() string {
	if s.Kind == Line {
		return fmt.Sprintf("%s (%g,%g)->(%g,%g)", s.Kind, s.Start.X, s.Start.Y, s.End.X, s.End.Y)
	}
	return fmt.Sprintf("%s (%g,%g)->(%g,%g) c=(%g,%g) r=%g",
		s.Kind, s.Start.X, s.Start.Y, s.End.X, s.End.Y, s.Center.X, s.Center.Y, s.Radius)
}
