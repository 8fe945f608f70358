package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"golang.org/x/image/colornames"
)

// Scene is what a preview shows: the source contours and the toolpaths
// generated from them
type Scene struct {
	Title     string
	Contours  []*toolpath.Path
	Toolpaths []*toolpath.Path
}

// Bounds returns the box around everything in the scene
func (s Scene) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, p := range s.Contours {
		bbox.Merge(p.Bounds())
	}
	for _, p := range s.Toolpaths {
		bbox.Merge(p.Bounds())
	}
	return bbox
}

// Options control the preview image
type Options struct {
	Width     int
	Height    int
	Margin    float64 // pixels
	LineWidth float64 // pixels

	Background color.Color
	Contour    color.Color
	Toolpath   color.Color
	Start      color.Color
	Text       color.Color
}

// DefaultOptions returns an 800x600 preview on white
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		Margin:     20,
		LineWidth:  1.5,
		Background: colornames.White,
		Contour:    colornames.Steelblue,
		Toolpath:   colornames.Orangered,
		Start:      colornames.Limegreen,
		Text:       colornames.Black,
	}
}

// Render draws the scene. Contours are drawn below the toolpaths; every
// toolpath gets a marker at its start point.
func Render(scene Scene, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	camera := NewCamera(scene.Bounds(), opts.Width, opts.Height, opts.Margin)
	// arcs are flattened to roughly two pixel chords
	step := 2 / camera.Scale

	p := newPen(img)
	for _, path := range scene.Contours {
		p.strokePolyline(project(camera, path, step), opts.LineWidth)
	}
	p.paint(opts.Contour)

	for _, path := range scene.Toolpaths {
		p.strokePolyline(project(camera, path, step), opts.LineWidth)
	}
	p.paint(opts.Toolpath)

	for _, path := range scene.Toolpaths {
		if path.Len() == 0 {
			continue
		}
		x, y := camera.Project(path.At(0).Start)
		p.disc(x, y, 2*opts.LineWidth+1)
	}
	p.paint(opts.Start)

	if scene.Title != "" {
		label(img, 4, 14, scene.Title, opts.Text)
	}
	return img
}

func project(camera *Camera, path *toolpath.Path, step float64) [][2]float64 {
	var points [][2]float64
	for i, s := range path.Segments() {
		pts := s.Flatten(step)
		if i > 0 {
			pts = pts[1:]
		}
		for _, pt := range pts {
			x, y := camera.Project(pt)
			points = append(points, [2]float64{x, y})
		}
	}
	return points
}

// WritePNG renders the scene and encodes it as PNG
func WritePNG(w io.Writer, scene Scene, opts Options) error {
	if err := png.Encode(w, Render(scene, opts)); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return nil
}
