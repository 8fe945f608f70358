package dxf

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger used while loading drawings; nil silences it
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

// Parse reads a DXF file and returns its drawing
func Parse(filename string) (*Drawing, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return ParseReader(name, file)
}

// ParseReader reads a DXF document from r
func ParseReader(name string, r io.Reader) (*Drawing, error) {
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DXF: %w", err)
	}

	drawing := NewDrawing(name)
	for _, entity := range doc.Entities.Entities {
		layer, e, ok := Convert(entity)
		if !ok {
			drawing.Skipped++
			loggerPtr.Load().Debug("skipping entity", "drawing", name, "type", fmt.Sprintf("%T", entity))
			continue
		}
		drawing.Add(layer, e)
	}

	loggerPtr.Load().Debug("parsed drawing", "drawing", name,
		"layers", len(drawing.order), "entities", drawing.EntityCount(), "skipped", drawing.Skipped)
	return drawing, nil
}

// Convert maps a dxf-go entity to its toolpath primitive and layer. Entities
// that cannot be milled in the plane (splines, text, 3-D faces) report false.
//
// Arcs, circles and light weight polylines are stored in object coordinates;
// the only extrusion handled is the mirrored one (0,0,-1) that many CAD
// programs write after flipping a part.
func Convert(entity entities.Entity) (string, toolpath.Entity, bool) {
	switch e := entity.(type) {
	case *entities.Line:
		return e.LayerName, toolpath.LineEntity{Start: point(e.Start), End: point(e.End)}, true

	case *entities.Circle:
		center := point(e.Center)
		if mirrored(e.ExtrusionDirection) {
			center.X = -center.X
		}
		return e.LayerName, toolpath.CircleEntity{Center: center, Radius: e.Radius}, true

	case *entities.Arc:
		arc := toolpath.ArcEntity{
			Center:     point(e.Center),
			Radius:     e.Radius,
			StartAngle: e.StartAngle,
			EndAngle:   e.EndAngle,
		}
		if mirrored(e.ExtrusionDirection) {
			arc.Center.X = -arc.Center.X
			arc.StartAngle = 180 - e.StartAngle
			arc.EndAngle = 180 - e.EndAngle
			arc.Clockwise = true
		}
		return e.LayerName, arc, true

	case *entities.LWPolyline:
		poly := toolpath.PolylineEntity{Closed: e.Closed}
		flip := mirrored(e.ExtrusionDirection)
		for _, p := range e.Points {
			v := point(p.Point)
			bulge := p.Bulge
			if flip {
				v.X = -v.X
				bulge = -bulge
			}
			poly.Vertices = append(poly.Vertices, v)
			poly.Bulges = append(poly.Bulges, bulge)
		}
		return e.LayerName, poly, true

	case *entities.Polyline:
		poly := toolpath.PolylineEntity{Closed: e.Closed}
		flip := mirrored(e.ExtrusionDirection)
		for _, vertex := range e.Vertices {
			v := point(vertex.Location)
			bulge := vertex.Bulge
			if flip {
				v.X = -v.X
				bulge = -bulge
			}
			poly.Vertices = append(poly.Vertices, v)
			poly.Bulges = append(poly.Bulges, bulge)
		}
		return e.LayerName, poly, true
	}
	return "", nil, false
}

func point(p core.Point) geometry.Vector2 {
	return geometry.NewVector2(p.X, p.Y)
}

func mirrored(extrusion core.Point) bool {
	return extrusion.Z < 0
}
