package gcode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(x, y float64) geometry.Vector2 {
	return geometry.NewVector2(x, y)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     string
	}{
		{1.5, 3, "1.5"},
		{2, 3, "2"},
		{-0.0001, 3, "0"},
		{10.12345, 3, "10.123"},
		{-3.25, 4, "-3.25"},
		{100, 0, "100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.value, tt.decimals))
	}
}

func TestBlockOrder(t *testing.T) {
	b := NewBlock(Word{'F', 600}, Word{'Y', 2}, Word{'X', 1}, Word{'G', 1})
	assert.Equal(t, "G1 X1 Y2 F600", b.Format(3))

	b = NewBlock(Word{'J', -1}, Word{'I', 0.5}, Word{'G', 2})
	assert.Equal(t, "G2 I0.5 J-1", b.Format(3))

	assert.Equal(t, "M3 S12000", Block{Raw: "M3 S12000"}.Format(3))
}

func TestFromPaths(t *testing.T) {
	p := toolpath.NewPath("slot",
		toolpath.NewLine(v(0, 0), v(10, 0)),
		toolpath.NewArc(toolpath.ArcCCW, v(10, 0), v(10, 10), v(10, 5)),
		toolpath.NewArc(toolpath.ArcCW, v(10, 10), v(0, 10), v(5, 10)),
	)
	params := Params{
		SafeZ:      5,
		CutZ:       -1.5,
		Feed:       600,
		PlungeFeed: 100,
		Decimals:   3,
		Header:     []string{"G21", "G90"},
		Footer:     []string{"M2"},
	}

	prog := FromPaths([]*toolpath.Path{p, toolpath.NewPath("empty")}, params)

	assert.Equal(t, []string{
		"G21",
		"G90",
		"G0 Z5",
		"G0 X0 Y0",
		"G1 Z-1.5 F100",
		"G1 X10 Y0 F600",
		"G3 X10 Y10 I0 J5 F600",
		"G2 X0 Y10 I-5 J0 F600",
		"G0 Z5",
		"M2",
	}, prog.Lines())
}

func TestWriteTo(t *testing.T) {
	prog := FromPaths([]*toolpath.Path{
		toolpath.NewPath("line", toolpath.NewLine(v(1, 1), v(2, 1))),
	}, DefaultParams())

	var buf bytes.Buffer
	n, err := prog.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, strings.Join(prog.Lines(), "\n")+"\n", buf.String())
}

func TestReadLines(t *testing.T) {
	src := `; generated
G21 (metric)
G90

G0  Z5 ; lift
(only a comment)
G1 X1 Y2
`
	lines, err := ReadLines(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"G21", "G90", "G0 Z5", "G1 X1 Y2"}, lines)
}

func TestReadLinesUnbalanced(t *testing.T) {
	_, err := ReadLines(strings.NewReader("G0 X1\nG1 (open\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestRoundTrip(t *testing.T) {
	prog := FromPaths([]*toolpath.Path{
		toolpath.NewPath("line", toolpath.NewLine(v(0, 0), v(3, 4))),
	}, DefaultParams())

	var buf bytes.Buffer
	_, err := prog.WriteTo(&buf)
	require.NoError(t, err)

	lines, err := ReadLines(&buf)
	require.NoError(t, err)
	assert.Equal(t, prog.Lines(), lines)
}
