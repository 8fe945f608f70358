package toolpath

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
)

// Path is an ordered sequence of segments describing one contour.
//
// A Path owns its segments exclusively. Methods that move segments to
// another path remove them from the source. A Path is not safe for
// concurrent use.
type Path struct {
	Name     string
	segments []*Segment

	length      float64
	lengthValid bool
}

// NewPath creates a path from the given segments
func NewPath(name string, segments ...*Segment) *Path {
	return &Path{Name: name, segments: segments}
}

// Len returns the number of segments
func (p *Path) Len() int {
	return len(p.segments)
}

// At returns the i-th segment
func (p *Path) At(i int) *Segment {
	return p.segments[i]
}

// Segments returns the segments in traversal order. The slice must not be
// modified by the caller.
func (p *Path) Segments() []*Segment {
	return p.segments
}

// Append adds segments at the end of the path
func (p *Path) Append(segments ...*Segment) {
	p.segments = append(p.segments, segments...)
	p.lengthValid = false
}

// Insert places segments before index i, shifting later segments up
func (p *Path) Insert(i int, segments ...*Segment) {
	p.segments = slices.Insert(p.segments, i, segments...)
	p.lengthValid = false
}

// Delete removes the segment at index i, shifting later segments down
func (p *Path) Delete(i int) {
	p.segments = slices.Delete(p.segments, i, i+1)
	p.lengthValid = false
}

// Clone returns a deep copy of the path
func (p *Path) Clone() *Path {
	c := NewPath(p.Name)
	c.segments = make([]*Segment, len(p.segments))
	for i, s := range p.segments {
		c.segments[i] = s.Clone()
	}
	return c
}

// IsClosed reports whether the last segment ends where the first begins
func (p *Path) IsClosed() bool {
	if len(p.segments) == 0 {
		return false
	}
	return geometry.Eq(p.segments[0].Start, p.segments[len(p.segments)-1].End)
}

// Length returns the total length of all segments
func (p *Path) Length() float64 {
	if !p.lengthValid {
		p.length = 0
		for _, s := range p.segments {
			p.length += s.Length()
		}
		p.lengthValid = true
	}
	return p.length
}

// Bounds returns the extents of all segments
func (p *Path) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, s := range p.segments {
		bbox.Merge(s.Bounds())
	}
	return bbox
}

// Distance returns the minimum distance from pt to any segment
func (p *Path) Distance(pt geometry.Vector2) float64 {
	d := math.Inf(1)
	for _, s := range p.segments {
		d = math.Min(d, s.Distance(pt))
	}
	return d
}

// Direction returns +1 for a clockwise closed path, -1 for a
// counter-clockwise one and 0 when the path is open.
//
// The sign comes from the accumulated turning angle between consecutive
// chords. When that sum is zero (a single full circle, two half circles)
// the signed area decides.
func (p *Path) Direction() int {
	if !p.IsClosed() {
		return 0
	}

	phi := 0.0
	a := p.segments[len(p.segments)-1].ab
	for _, s := range p.segments {
		b := s.ab
		pl := a.Length() * b.Length()
		if pl > geometry.EPS2 {
			phi += math.Asin(math.Max(-1, math.Min(1, a.Cross(b)/pl)))
		}
		if b.Length2() > geometry.EPS2 {
			a = b
		}
	}

	if math.Abs(phi) < geometry.EPS {
		phi = p.SignedArea()
	}
	if phi < 0 {
		return 1
	}
	return -1
}

// SignedArea returns the enclosed area, positive when counter-clockwise.
// Arcs contribute their circular segment.
func (p *Path) SignedArea() float64 {
	area := 0.0
	for _, s := range p.segments {
		area += (s.Start.X*s.End.Y - s.End.X*s.Start.Y) / 2
		if s.Kind.IsArc() {
			sweep := s.Sweep()
			area += s.Radius * s.Radius / 2 * (sweep - math.Sin(sweep))
		}
	}
	return area
}

// Order consumes the segments of the path and chains them into connected
// paths, inverting segments where needed. Each chain grows at its end first
// and then at its start. Ties between several candidates go to the first
// one in the remaining pool.
func (p *Path) Order() []*Path {
	var paths []*Path
	pool := p.segments
	p.segments = nil
	p.lengthValid = false

	for len(pool) > 0 {
		chain := NewPath(p.Name, pool[0])
		pool = pool[1:]

		for {
			i, invert := matchAt(pool, chain.segments[len(chain.segments)-1].End, true)
			if i < 0 {
				break
			}
			s := pool[i]
			if invert {
				s.Invert()
			}
			chain.segments = append(chain.segments, s)
			pool = slices.Delete(pool, i, i+1)
		}

		for !chain.IsClosed() {
			i, invert := matchAt(pool, chain.segments[0].Start, false)
			if i < 0 {
				break
			}
			s := pool[i]
			if invert {
				s.Invert()
			}
			chain.segments = slices.Insert(chain.segments, 0, s)
			pool = slices.Delete(pool, i, i+1)
		}

		paths = append(paths, chain)
	}

	return paths
}

// matchAt finds the first segment in pool touching pt. For tail matching a
// segment starting at pt fits as is; for head matching one ending at pt does.
func matchAt(pool []*Segment, pt geometry.Vector2, tail bool) (int, bool) {
	for i, s := range pool {
		fits, flipped := s.Start, s.End
		if !tail {
			fits, flipped = s.End, s.Start
		}
		if geometry.Eq(pt, fits) {
			return i, false
		}
		if geometry.Eq(pt, flipped) {
			return i, true
		}
	}
	return -1, false
}

// Offset returns a new path at the signed perpendicular distance. Positive
// distances offset to the left of the direction of travel. Convex corners
// get a fillet arc around the original vertex, other gaps a straight line.
func (p *Path) Offset(distance float64) *Path {
	start := time.Now()
	path := NewPath(fmt.Sprintf("%s[%g]", p.Name, distance))
	if len(p.segments) == 0 {
		return path
	}

	var eo, op geometry.Vector2
	havePrev := false
	if p.IsClosed() {
		prev := p.segments[len(p.segments)-1]
		op = prev.OrthogonalAtEnd()
		eo = prev.End.Add(op.Mul(distance))
		havePrev = true
	}

	for _, s := range p.segments {
		o := s.OrthogonalAtStart()
		so := s.Start.Add(o.Mul(distance))

		if havePrev && !geometry.Eq(eo, so) {
			cross := o.X*op.Y - o.Y*op.X
			if math.Abs(cross) > geometry.EPS && cross*distance > 0 {
				kind := ArcCCW
				if distance > 0 {
					kind = ArcCW
				}
				path.Append(NewArc(kind, eo, so, s.Start))
			} else {
				path.Append(NewLine(eo, so))
			}
		}

		op = s.OrthogonalAtEnd()
		eo = s.End.Add(op.Mul(distance))
		havePrev = true

		if s.Kind == Line {
			path.Append(NewLine(so, eo))
			continue
		}

		radius := s.Radius + distance
		if s.Kind == ArcCCW {
			radius = s.Radius - distance
		}
		if radius < geometry.EPS {
			// the arc collapses onto its center
			path.Append(NewLine(so, eo))
			continue
		}
		path.Append(NewArcAngles(s.Kind, so, eo, s.Center, radius, s.StartPhi, s.EndPhi))
	}

	Logger().Debug("offset", "path", p.Name, "distance", distance,
		"segments", path.Len(), "elapsed", time.Since(start))
	return path
}

// Intersect splits the path at all its self-intersections and marks the
// segment ending at each crossing with Cross. It returns the number of
// segments inserted.
//
// Pairs (i, j) with j >= i+2 are scanned. Splitting inserts new segments,
// which shifts every later index; the scan keeps loEnd/hiEnd as the last
// index of the pieces of the original segments i and j so a second crossing
// of the same pair lands on the right piece.
func (p *Path) Intersect() int {
	start := time.Now()
	inserted := 0

	for i := 0; i < len(p.segments)-2; i++ {
		for j := i + 2; j < len(p.segments); j++ {
			p1, p2 := p.segments[i].Intersect(p.segments[j])
			if p1 != nil && p2 != nil && geometry.Eq(*p1, *p2) {
				// tangent: not a crossing
				continue
			}

			loEnd, hiEnd := i, j
			for _, pt := range []*geometry.Vector2{p1, p2} {
				if pt == nil {
					continue
				}
				if p.splitPiece(j, hiEnd, *pt) {
					hiEnd++
					inserted++
				}
				if p.splitPiece(i, loEnd, *pt) {
					loEnd++
					hiEnd++
					j++
					inserted++
				}
			}
			j = hiEnd
		}
	}

	Logger().Debug("intersect", "path", p.Name, "inserted", inserted,
		"segments", len(p.segments), "elapsed", time.Since(start))
	return inserted
}

// splitPiece splits the piece in [first, last] containing pt and reports
// whether a new segment was inserted
func (p *Path) splitPiece(first, last int, pt geometry.Vector2) bool {
	k := last
	for idx := first; idx <= last; idx++ {
		if p.segments[idx].Inside(pt) {
			k = idx
			break
		}
	}

	result := p.segments[k].Split(pt)
	switch result.Kind {
	case NoSplitAtStart:
		prev := k - 1
		if prev < 0 {
			prev = len(p.segments) - 1
		}
		p.segments[prev].Cross = true
	case NewTrailingSegment:
		p.segments[k].Cross = true
		p.Insert(k+1, result.Segment)
		return true
	}
	return false
}

// RemoveExcluded drops the parts of an offset path that come closer to the
// reference contour than the offset distance. The path is walked in order
// and inclusion toggles at every crossing.
func (p *Path) RemoveExcluded(reference *Path, offset float64) {
	if len(p.segments) == 0 {
		return
	}
	chkofs := math.Abs(offset) * (1.0 - geometry.EPS)
	include := reference.Distance(p.segments[0].Start) >= chkofs
	removed := 0

	for i := 0; i < len(p.segments); i++ {
		s := p.segments[i]
		if !include {
			p.Delete(i)
			i--
			removed++
		}
		if s.Cross {
			include = !include
			if include {
				include = reference.Distance(s.End) > chkofs
			}
		}
	}

	Logger().Debug("remove excluded", "path", p.Name, "removed", removed)
	p.RemoveZeroLength()
}

// HasPoint returns the index of the first segment starting at pt
func (p *Path) HasPoint(pt geometry.Vector2) (int, bool) {
	for i, s := range p.segments {
		if geometry.Eq(s.Start, pt) {
			return i, true
		}
	}
	return -1, false
}

// MoveBack rotates the path so that the first i segments move to the end
func (p *Path) MoveBack(i int) {
	if i <= 0 || i >= len(p.segments) {
		return
	}
	rotated := make([]*Segment, 0, len(p.segments))
	rotated = append(rotated, p.segments[i:]...)
	rotated = append(rotated, p.segments[:i]...)
	p.segments = rotated
}

// MergeLoops splices closed loops that touch a segment start of p into p.
// Merged loops are emptied and dropped; the loops left over are returned
// together with whether anything was merged.
func (p *Path) MergeLoops(loops []*Path) ([]*Path, bool) {
	merged := false
	for {
		progress := false
		for i := 0; i < len(loops); {
			if loops[i].IsClosed() && p.splice(loops[i]) {
				loops = slices.Delete(loops, i, i+1)
				progress = true
				continue
			}
			i++
		}
		if !progress {
			return loops, merged
		}
		merged = true
	}
}

// splice inserts loop into p where they share a point
func (p *Path) splice(loop *Path) bool {
	for j, s := range p.segments {
		k, ok := loop.HasPoint(s.Start)
		if !ok {
			continue
		}
		loop.MoveBack(k)
		p.Insert(j, loop.segments...)
		loop.segments = nil
		loop.lengthValid = false
		return true
	}
	return false
}

// RemoveZeroLength drops segments shorter than the tolerance
func (p *Path) RemoveZeroLength() {
	kept := p.segments[:0]
	for _, s := range p.segments {
		if s.Length() >= geometry.EPS {
			kept = append(kept, s)
		}
	}
	clear(p.segments[len(kept):])
	p.segments = kept
	p.lengthValid = false
}

func (p *Path) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d segments, length %.4f", p.Name, len(p.segments), p.Length())
	for _, s := range p.segments {
		b.WriteString("\n  ")
		b.WriteString(s.String())
		if s.Cross {
			b.WriteString(" X")
		}
	}
	return b.String()
}
