package viewer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// pen accumulates filled shapes of one colour and paints them in one pass
type pen struct {
	z   *vector.Rasterizer
	dst draw.Image
}

func newPen(dst draw.Image) *pen {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return &pen{z: z, dst: dst}
}

// strokeLine adds a line of the given width as a filled quad
func (p *pen) strokeLine(x1, y1, x2, y2, width float64) {
	dx, dy := x2-x1, y2-y1
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2

	p.z.MoveTo(float32(x1+nx), float32(y1+ny))
	p.z.LineTo(float32(x2+nx), float32(y2+ny))
	p.z.LineTo(float32(x2-nx), float32(y2-ny))
	p.z.LineTo(float32(x1-nx), float32(y1-ny))
	p.z.ClosePath()
}

// strokePolyline adds consecutive lines through the points
func (p *pen) strokePolyline(points [][2]float64, width float64) {
	for i := 1; i < len(points); i++ {
		p.strokeLine(points[i-1][0], points[i-1][1], points[i][0], points[i][1], width)
	}
}

// disc adds a filled circle approximated by a polygon
func (p *pen) disc(cx, cy, r float64) {
	const steps = 16
	p.z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < steps; i++ {
		phi := 2 * math.Pi * float64(i) / steps
		p.z.LineTo(float32(cx+r*math.Cos(phi)), float32(cy+r*math.Sin(phi)))
	}
	p.z.ClosePath()
}

// paint draws everything added so far and starts over
func (p *pen) paint(col color.Color) {
	b := p.dst.Bounds()
	p.z.Draw(p.dst, b, image.NewUniform(col), image.Point{})
	p.z.Reset(b.Dx(), b.Dy())
	p.z.DrawOp = draw.Over
}

// label draws text with its baseline at (x, y)
func label(dst draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
