package toolpath

import (
	"math"
	"testing"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// polygon returns a closed path through the given corners
func polygon(name string, corners ...geometry.Vector2) *Path {
	p := NewPath(name)
	for i, c := range corners {
		p.Append(NewLine(c, corners[(i+1)%len(corners)]))
	}
	return p
}

// square is the counter-clockwise 4x4 square at the origin
func square() *Path {
	return polygon("square", v(0, 0), v(4, 0), v(4, 4), v(0, 4))
}

func assertChained(t *testing.T, p *Path) {
	t.Helper()
	for i := 1; i < p.Len(); i++ {
		assert.True(t, geometry.Eq(p.At(i-1).End, p.At(i).Start),
			"segment %d ends at %v but %d starts at %v", i-1, p.At(i-1).End, i, p.At(i).Start)
	}
}

func TestPathIsClosed(t *testing.T) {
	assert.False(t, NewPath("empty").IsClosed())
	assert.True(t, square().IsClosed())
	assert.False(t, NewPath("open", NewLine(v(0, 0), v(1, 0))).IsClosed())
	assert.True(t, NewPath("circle", circle(v(0, 0), 1)).IsClosed())
}

func TestPathLengthCache(t *testing.T) {
	p := square()
	assert.InDelta(t, 16.0, p.Length(), delta)

	p.Append(NewLine(v(0, 0), v(0, -1)))
	assert.InDelta(t, 17.0, p.Length(), delta)

	p.Delete(0)
	assert.InDelta(t, 13.0, p.Length(), delta)

	p.Insert(0, NewLine(v(9, 9), v(9, 11)))
	assert.InDelta(t, 15.0, p.Length(), delta)
}

func TestPathDistance(t *testing.T) {
	p := square()
	assert.InDelta(t, 1.0, p.Distance(v(2, 5)), delta)
	assert.InDelta(t, 1.0, p.Distance(v(2, 1)), delta)
	assert.InDelta(t, 0.0, p.Distance(v(4, 2)), delta)
	assert.True(t, math.IsInf(NewPath("empty").Distance(v(0, 0)), 1))
}

func TestPathDirection(t *testing.T) {
	assert.Equal(t, -1, square().Direction())

	cw := polygon("cw", v(0, 0), v(0, 4), v(4, 4), v(4, 0))
	assert.Equal(t, 1, cw.Direction())

	open := NewPath("open", NewLine(v(0, 0), v(1, 0)), NewLine(v(1, 0), v(1, 1)))
	assert.Equal(t, 0, open.Direction())

	assert.Equal(t, -1, NewPath("ccw circle", circle(v(0, 0), 2)).Direction())

	start := v(2, 0)
	cwCircle := NewArcAngles(ArcCW, start, start, v(0, 0), 2, geometry.PI2, 0)
	assert.Equal(t, 1, NewPath("cw circle", cwCircle).Direction())

	halves := NewPath("halves",
		NewArc(ArcCW, v(1, 0), v(-1, 0), v(0, 0)),
		NewArc(ArcCW, v(-1, 0), v(1, 0), v(0, 0)))
	require.True(t, halves.IsClosed())
	assert.Equal(t, 1, halves.Direction())
}

func TestPathSignedArea(t *testing.T) {
	assert.InDelta(t, 16.0, square().SignedArea(), delta)
	assert.InDelta(t, math.Pi, NewPath("circle", circle(v(3, 3), 1)).SignedArea(), delta)
}

func TestOrderPerpendicularLines(t *testing.T) {
	p := NewPath("corner",
		NewLine(v(-1, 0), v(0, 0)),
		NewLine(v(0, 0), v(0, 1)))

	paths := p.Order()
	require.Len(t, paths, 1)

	got := paths[0]
	assert.Equal(t, 2, got.Len())
	assertChained(t, got)
	assert.False(t, got.IsClosed())
	assert.InDelta(t, 2.0, got.Length(), delta)
	assert.Equal(t, 0, p.Len(), "order consumes the source segments")
}

func TestOrderAlreadyOrdered(t *testing.T) {
	p := square()
	length := p.Length()

	paths := p.Order()
	require.Len(t, paths, 1)
	assert.Equal(t, 4, paths[0].Len())
	assert.InDelta(t, length, paths[0].Length(), delta)
	assert.True(t, paths[0].IsClosed())
	assert.Equal(t, "square", paths[0].Name)
}

func TestOrderShuffledAndInverted(t *testing.T) {
	p := NewPath("mixed",
		NewLine(v(4, 4), v(0, 4)),
		NewLine(v(0, 0), v(4, 0)),
		NewLine(v(0, 0), v(0, 4)), // reversed
		NewLine(v(4, 4), v(4, 0)), // reversed
	)

	paths := p.Order()
	require.Len(t, paths, 1)
	got := paths[0]
	assert.Equal(t, 4, got.Len())
	assertChained(t, got)
	assert.True(t, got.IsClosed())
	assert.InDelta(t, 16.0, got.Length(), delta)
}

func TestOrderGrowsAtBothEnds(t *testing.T) {
	p := NewPath("chain",
		NewLine(v(1, 0), v(2, 0)),
		NewLine(v(0, 0), v(1, 0)),
		NewLine(v(2, 0), v(3, 0)),
	)

	paths := p.Order()
	require.Len(t, paths, 1)
	got := paths[0]
	assertChained(t, got)
	assert.Equal(t, v(0, 0), got.At(0).Start)
	assert.Equal(t, v(3, 0), got.At(2).End)
}

func TestOrderDisjointContours(t *testing.T) {
	p := NewPath("two",
		NewLine(v(0, 0), v(1, 0)),
		NewLine(v(10, 10), v(11, 10)),
		NewLine(v(1, 0), v(1, 1)),
		circle(v(20, 20), 1),
	)

	paths := p.Order()
	require.Len(t, paths, 3)

	total := 0
	for _, path := range paths {
		assertChained(t, path)
		total += path.Len()
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, paths[0].Len())
	assert.True(t, paths[2].IsClosed())
}

func TestOrderEmpty(t *testing.T) {
	assert.Empty(t, NewPath("empty").Order())
}

func TestOffsetSquareOutward(t *testing.T) {
	sq := square()
	d := SignedOffset(sq, 1.0, SideOutside)
	require.InDelta(t, -1.0, d, delta)

	off := sq.Offset(d)
	assert.Equal(t, "square[-1]", off.Name)
	require.Equal(t, 8, off.Len())
	assert.True(t, off.IsClosed())
	assertChained(t, off)

	lines, arcs := 0, 0
	for _, s := range off.Segments() {
		if s.Kind == Line {
			lines++
			assert.InDelta(t, 4.0, s.Length(), delta)
		} else {
			arcs++
			assert.InDelta(t, 1.0, s.Radius, delta)
			assert.InDelta(t, math.Pi/2, math.Abs(s.Sweep()), delta)
		}
	}
	assert.Equal(t, 4, lines)
	assert.Equal(t, 4, arcs)
	assert.InDelta(t, 16+2*math.Pi, off.Length(), 1e-6)
}

func TestOffsetClockwiseSquareLeft(t *testing.T) {
	cw := polygon("cw", v(0, 0), v(0, 4), v(4, 4), v(4, 0))

	off := cw.Offset(1)
	assert.InDelta(t, 16+2*math.Pi, off.Length(), 1e-6)
	for _, s := range off.Segments() {
		if s.Kind.IsArc() {
			assert.Equal(t, ArcCW, s.Kind)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	sq := square()
	d := SignedOffset(sq, 1.0, SideOutside)

	out := sq.Offset(d)
	back := out.Offset(-d)
	back.RemoveZeroLength()

	assert.Equal(t, 4, back.Len())
	assert.InDelta(t, sq.Length(), back.Length(), 1e-6)
	assert.True(t, back.IsClosed())
}

func TestOffsetInwardLeavesConnectors(t *testing.T) {
	off := square().Offset(1)

	// concave corners are joined by straight connectors, not fillets
	require.Equal(t, 8, off.Len())
	for _, s := range off.Segments() {
		assert.Equal(t, Line, s.Kind)
	}
	assert.Equal(t, v(1, 0), off.At(0).Start)
	assert.Equal(t, v(0, 1), off.At(0).End)
}

func TestOffsetCircle(t *testing.T) {
	p := NewPath("circle", circle(v(0, 0), 2))

	out := p.Offset(-1)
	require.Equal(t, 1, out.Len())
	assert.InDelta(t, 3.0, out.At(0).Radius, delta)
	assert.InDelta(t, 6*math.Pi, out.Length(), 1e-9)

	in := p.Offset(1)
	require.Equal(t, 1, in.Len())
	assert.InDelta(t, 2*math.Pi, in.Length(), 1e-9)

	collapsed := p.Offset(2)
	require.Equal(t, 1, collapsed.Len())
	assert.Equal(t, Line, collapsed.At(0).Kind)
	assert.InDelta(t, 0, collapsed.Length(), 1e-9)
}

func TestOffsetOpenPath(t *testing.T) {
	p := NewPath("open", NewLine(v(0, 0), v(4, 0)), NewLine(v(4, 0), v(4, 4)))

	off := p.Offset(-1)
	require.Equal(t, 3, off.Len())
	assert.Equal(t, v(0, -1), off.At(0).Start)
	assert.Equal(t, ArcCCW, off.At(1).Kind)
	assert.Equal(t, v(5, 4), off.At(2).End)
	assert.False(t, off.IsClosed())
}

// bowTie is a closed figure eight crossing itself at (1,1)
func bowTie() *Path {
	return polygon("bowtie", v(0, 0), v(2, 2), v(2, 0), v(0, 2))
}

func crossFlags(p *Path) []bool {
	flags := make([]bool, p.Len())
	for i, s := range p.Segments() {
		flags[i] = s.Cross
	}
	return flags
}

func TestIntersectBowTie(t *testing.T) {
	p := bowTie()

	inserted := p.Intersect()
	assert.Equal(t, 2, inserted)
	require.Equal(t, 6, p.Len())
	assertChained(t, p)

	assert.Equal(t, v(1, 1), p.At(0).End)
	assert.Equal(t, v(1, 1), p.At(3).End)
	assert.Equal(t, []bool{true, false, false, true, false, true}, crossFlags(p))
	assert.InDelta(t, 4*2*math.Sqrt2/2+4, p.Length(), 1e-9)
}

func TestIntersectIdempotent(t *testing.T) {
	p := bowTie()
	p.Intersect()
	count := p.Len()
	flags := crossFlags(p)

	assert.Equal(t, 0, p.Intersect())
	assert.Equal(t, count, p.Len())
	assert.Equal(t, flags, crossFlags(p))
}

// lineThroughArc is an open path: a 340 degree arc around the origin, a
// connector and a line along y = -x that crosses the arc twice
func lineThroughArc() *Path {
	o := v(0, 0)
	from, to := math.Pi/18, 35*math.Pi/18
	a, b := geometry.Polar(o, 2, from), geometry.Polar(o, 2, to)
	return NewPath("arc",
		NewArcAngles(ArcCCW, a, b, o, 2, from, to),
		NewLine(b, v(3, -3)),
		NewLine(v(3, -3), v(-3, 3)),
	)
}

func reversed(p *Path) *Path {
	out := NewPath(p.Name)
	for i := p.Len() - 1; i >= 0; i-- {
		out.Append(p.At(i).Clone().Invert())
	}
	return out
}

func TestIntersectTwoCrossingsOfOnePair(t *testing.T) {
	p135, p315 := v(-math.Sqrt2, math.Sqrt2), v(math.Sqrt2, -math.Sqrt2)

	p := lineThroughArc()
	length := p.Length()

	assert.Equal(t, 4, p.Intersect())
	require.Equal(t, 7, p.Len())
	assertChained(t, p)

	for i := 0; i < 3; i++ {
		assert.Equal(t, ArcCCW, p.At(i).Kind)
	}
	assert.True(t, geometry.Eq(p135, p.At(0).End), "first arc piece ends at %v", p.At(0).End)
	assert.True(t, geometry.Eq(p315, p.At(1).End), "second arc piece ends at %v", p.At(1).End)
	assert.True(t, geometry.Eq(p315, p.At(4).End), "first line piece ends at %v", p.At(4).End)
	assert.True(t, geometry.Eq(p135, p.At(5).End), "second line piece ends at %v", p.At(5).End)
	assert.Equal(t, []bool{true, true, false, false, true, true, false}, crossFlags(p))
	assert.InDelta(t, length, p.Length(), 1e-9)

	flags := crossFlags(p)
	assert.Equal(t, 0, p.Intersect())
	assert.Equal(t, 7, p.Len())
	assert.Equal(t, flags, crossFlags(p))
}

func TestIntersectTwoCrossingsLineFirst(t *testing.T) {
	p135, p315 := v(-math.Sqrt2, math.Sqrt2), v(math.Sqrt2, -math.Sqrt2)

	p := reversed(lineThroughArc())
	require.Equal(t, ArcCW, p.At(2).Kind)
	length := p.Length()

	assert.Equal(t, 4, p.Intersect())
	require.Equal(t, 7, p.Len())
	assertChained(t, p)

	assert.True(t, geometry.Eq(p135, p.At(0).End), "first line piece ends at %v", p.At(0).End)
	assert.True(t, geometry.Eq(p315, p.At(1).End), "second line piece ends at %v", p.At(1).End)
	assert.True(t, geometry.Eq(p315, p.At(4).End), "first arc piece ends at %v", p.At(4).End)
	assert.True(t, geometry.Eq(p135, p.At(5).End), "second arc piece ends at %v", p.At(5).End)
	assert.Equal(t, []bool{true, true, false, false, true, true, false}, crossFlags(p))
	assert.InDelta(t, length, p.Length(), 1e-9)

	assert.Equal(t, 0, p.Intersect())
	assert.Equal(t, 7, p.Len())
}

func TestIntersectSimpleLoopHasNoSplits(t *testing.T) {
	p := square()
	assert.Equal(t, 0, p.Intersect())
	assert.Equal(t, 4, p.Len())
}

func TestRemoveExcludedDrop(t *testing.T) {
	ref := NewPath("ref", NewLine(v(0, 0), v(10, 0)))
	p := NewPath("offset",
		NewLine(v(0, 1), v(4, 1)),
		NewLine(v(4, 1), v(5, 0.5)),
		NewLine(v(5, 0.5), v(6, 1)),
		NewLine(v(6, 1), v(10, 1)),
	)
	p.At(0).Cross = true
	p.At(2).Cross = true

	p.RemoveExcluded(ref, 1)

	require.Equal(t, 2, p.Len())
	assert.Equal(t, v(0, 1), p.At(0).Start)
	assert.Equal(t, v(6, 1), p.At(1).Start)
	assert.InDelta(t, 8.0, p.Length(), delta)
}

func TestRemoveExcludedStartsExcluded(t *testing.T) {
	ref := NewPath("ref", NewLine(v(0, 0), v(10, 0)))
	p := NewPath("offset",
		NewLine(v(0, 0.5), v(2, 1)),
		NewLine(v(2, 1), v(4, 1)),
	)
	p.At(0).Cross = true

	p.RemoveExcluded(ref, -1)

	require.Equal(t, 1, p.Len())
	assert.Equal(t, v(2, 1), p.At(0).Start)
}

func TestHasPointAndMoveBack(t *testing.T) {
	p := square()

	i, ok := p.HasPoint(v(4, 4))
	require.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = p.HasPoint(v(2, 2))
	assert.False(t, ok)

	p.MoveBack(i)
	assert.Equal(t, v(4, 4), p.At(0).Start)
	assert.Equal(t, v(4, 4), p.At(3).End)
	assert.True(t, p.IsClosed())
	assertChained(t, p)
}

func TestMergeLoops(t *testing.T) {
	outer := square()
	loop := NewPath("loop",
		NewLine(v(5, -1), v(6, 0)),
		NewLine(v(6, 0), v(4, 0)),
		NewLine(v(4, 0), v(5, -1)),
	)
	open := NewPath("open", NewLine(v(4, 4), v(5, 5)))
	far := polygon("far", v(10, 10), v(11, 10), v(11, 11))

	rest, merged := outer.MergeLoops([]*Path{loop, open, far})

	assert.True(t, merged)
	require.Len(t, rest, 2)
	assert.Same(t, open, rest[0])
	assert.Same(t, far, rest[1])

	assert.Equal(t, 7, outer.Len())
	assert.Equal(t, 0, loop.Len())
	assertChained(t, outer)
	assert.True(t, outer.IsClosed())
	assert.Equal(t, v(4, 0), outer.At(1).Start)
	assert.Equal(t, v(5, -1), outer.At(1).End)
	assert.InDelta(t, 16+2*math.Sqrt2+2, outer.Length(), 1e-9)
}

func TestMergeLoopsChained(t *testing.T) {
	outer := polygon("main", v(0, 0), v(1, 0), v(0, 1))
	// b only touches a, so it can merge once a is part of main
	b := polygon("b", v(2, 1), v(3, 1), v(3, 2))
	a := polygon("a", v(1, 0), v(2, 1), v(2, 0))

	rest, merged := outer.MergeLoops([]*Path{b, a})

	assert.True(t, merged)
	assert.Empty(t, rest)
	assert.Equal(t, 9, outer.Len())
	assertChained(t, outer)
}

func TestMergeLoopsNothingToMerge(t *testing.T) {
	outer := square()
	rest, merged := outer.MergeLoops(nil)
	assert.False(t, merged)
	assert.Empty(t, rest)
}

func TestRemoveZeroLength(t *testing.T) {
	p := NewPath("tiny", NewLine(v(1, 1), v(1+geometry.EPS/10, 1)))
	p.RemoveZeroLength()
	assert.Equal(t, 0, p.Len())
	assert.InDelta(t, 0, p.Length(), delta)

	q := NewPath("mixed",
		NewLine(v(0, 0), v(1, 0)),
		NewLine(v(1, 0), v(1, 0)),
		NewLine(v(1, 0), v(2, 0)))
	q.RemoveZeroLength()
	assert.Equal(t, 2, q.Len())
	assertChained(t, q)
}

func TestPathClone(t *testing.T) {
	p := square()
	c := p.Clone()
	c.At(0).Invert()

	assert.Equal(t, v(0, 0), p.At(0).Start)
	assert.NotSame(t, p.At(0), c.At(0))
	assert.Equal(t, p.Name, c.Name)
}
