package dxf

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var up = core.Point{X: 0, Y: 0, Z: 1}
var down = core.Point{X: 0, Y: 0, Z: -1}

func TestConvertLine(t *testing.T) {
	line := &entities.Line{
		Start: core.Point{X: 1, Y: 2, Z: 5},
		End:   core.Point{X: 3, Y: 4, Z: 5},
	}
	line.LayerName = "cut"

	layer, e, ok := Convert(line)
	require.True(t, ok)
	assert.Equal(t, "cut", layer)
	assert.Equal(t, toolpath.LineEntity{
		Start: geometry.NewVector2(1, 2),
		End:   geometry.NewVector2(3, 4),
	}, e)
}

func TestConvertCircle(t *testing.T) {
	circle := &entities.Circle{Center: core.Point{X: 2, Y: 3}, Radius: 1.5, ExtrusionDirection: up}

	_, e, ok := Convert(circle)
	require.True(t, ok)
	assert.Equal(t, toolpath.CircleEntity{Center: geometry.NewVector2(2, 3), Radius: 1.5}, e)

	circle.ExtrusionDirection = down
	_, e, ok = Convert(circle)
	require.True(t, ok)
	assert.Equal(t, toolpath.CircleEntity{Center: geometry.NewVector2(-2, 3), Radius: 1.5}, e)
}

func TestConvertArc(t *testing.T) {
	arc := &entities.Arc{
		Center:             core.Point{X: 1, Y: 0},
		Radius:             2,
		StartAngle:         0,
		EndAngle:           90,
		ExtrusionDirection: up,
	}

	_, e, ok := Convert(arc)
	require.True(t, ok)
	got := e.(toolpath.ArcEntity)
	assert.False(t, got.Clockwise)
	assert.InDelta(t, 3, got.StartPoint().X, 1e-9)
	assert.InDelta(t, 2, got.EndPoint().Y, 1e-9)
}

func TestConvertMirroredArc(t *testing.T) {
	arc := &entities.Arc{
		Center:             core.Point{X: 1, Y: 0},
		Radius:             2,
		StartAngle:         0,
		EndAngle:           90,
		ExtrusionDirection: down,
	}

	_, e, ok := Convert(arc)
	require.True(t, ok)
	got := e.(toolpath.ArcEntity)
	assert.True(t, got.Clockwise)
	assert.Equal(t, geometry.NewVector2(-1, 0), got.Center)

	// the object x axis points to -x in world coordinates
	assert.InDelta(t, -3, got.StartPoint().X, 1e-9)
	assert.InDelta(t, 0, got.StartPoint().Y, 1e-9)
	assert.InDelta(t, -1, got.EndPoint().X, 1e-9)
	assert.InDelta(t, 2, got.EndPoint().Y, 1e-9)

	p := toolpath.FromLayer("mirrored", []toolpath.Entity{got})
	require.Equal(t, 1, p.Len())
	assert.Equal(t, toolpath.ArcCW, p.At(0).Kind)
	assert.InDelta(t, math.Pi, p.At(0).Length(), 1e-9)
}

func TestConvertLWPolyline(t *testing.T) {
	poly := &entities.LWPolyline{
		Closed: true,
		Points: entities.LWPolyLinePointSlice{
			{Point: core.Point{X: 0, Y: 0}},
			{Point: core.Point{X: 4, Y: 0}, Bulge: 1},
			{Point: core.Point{X: 4, Y: 4}},
		},
		ExtrusionDirection: up,
	}

	_, e, ok := Convert(poly)
	require.True(t, ok)
	got := e.(toolpath.PolylineEntity)
	assert.True(t, got.Closed)
	assert.Len(t, got.Vertices, 3)
	assert.Equal(t, []float64{0, 1, 0}, got.Bulges)

	p := toolpath.FromLayer("poly", []toolpath.Entity{got})
	require.Equal(t, 3, p.Len())
	assert.Equal(t, toolpath.ArcCCW, p.At(1).Kind)
	assert.InDelta(t, 4+2*math.Pi+4*math.Sqrt2, p.Length(), 1e-9)
}

func heavySquare(extrusion core.Point) *entities.Polyline {
	poly := &entities.Polyline{
		Closed:             true,
		ExtrusionDirection: extrusion,
		Vertices: entities.VertexSlice{
			{Location: core.Point{X: 0, Y: 0}},
			{Location: core.Point{X: 4, Y: 0}, Bulge: 1},
			{Location: core.Point{X: 4, Y: 4}},
			{Location: core.Point{X: 0, Y: 4}},
		},
	}
	poly.LayerName = "outline"
	return poly
}

func TestConvertPolyline(t *testing.T) {
	layer, e, ok := Convert(heavySquare(up))
	require.True(t, ok)
	assert.Equal(t, "outline", layer)
	got := e.(toolpath.PolylineEntity)
	assert.True(t, got.Closed)
	assert.Equal(t, []float64{0, 1, 0, 0}, got.Bulges)

	paths := toolpath.FromLayer("outline", []toolpath.Entity{got}).Order()
	require.Len(t, paths, 1)
	p := paths[0]
	assert.True(t, p.IsClosed())
	require.Equal(t, 4, p.Len())
	assert.Equal(t, toolpath.ArcCCW, p.At(1).Kind)
	assert.InDelta(t, 12+2*math.Pi, p.Length(), 1e-9)
	assert.Equal(t, -1, p.Direction())
}

func TestConvertMirroredPolyline(t *testing.T) {
	_, e, ok := Convert(heavySquare(down))
	require.True(t, ok)
	got := e.(toolpath.PolylineEntity)
	assert.True(t, got.Closed)
	assert.Equal(t, []float64{0, -1, 0, 0}, got.Bulges)
	assert.Equal(t, geometry.NewVector2(-4, 0), got.Vertices[1])

	p := toolpath.FromLayer("outline", []toolpath.Entity{got})
	require.Equal(t, 4, p.Len())
	assert.Equal(t, toolpath.ArcCW, p.At(1).Kind)
	assert.Equal(t, 1, p.Direction())
}

func TestConvertUnsupported(t *testing.T) {
	_, _, ok := Convert(&entities.Spline{})
	assert.False(t, ok)
}

func TestDrawingLayers(t *testing.T) {
	d := NewDrawing("part")
	d.Add("outline", toolpath.LineEntity{})
	d.Add("holes", toolpath.CircleEntity{Radius: 1})
	d.Add("outline", toolpath.LineEntity{})

	assert.Equal(t, []string{"outline", "holes"}, d.LayerNames())
	assert.Equal(t, 3, d.EntityCount())

	outline, err := d.Layer("outline")
	require.NoError(t, err)
	assert.Len(t, outline, 2)

	_, err = d.Layer("engrave")
	assert.True(t, errors.Is(err, ErrLayerNotFound))
	assert.Contains(t, err.Error(), "engrave")
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.dxf"))
	assert.Error(t, err)
}
