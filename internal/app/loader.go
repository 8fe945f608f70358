package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gotoolpath/pkg/dxf"
	"github.com/philipparndt/gotoolpath/pkg/openscad"
)

// ErrUnsupportedFile is returned for sources that are neither DXF nor OpenSCAD
var ErrUnsupportedFile = errors.New("unsupported file type")

func isOpenSCAD(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".scad")
}

// LoadDrawing loads a drawing from either a DXF or a 2-D OpenSCAD file.
// OpenSCAD sources are rendered to a temporary DXF first.
func LoadDrawing(ctx context.Context, filePath string) (*dxf.Drawing, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".dxf":
		drawing, err := dxf.Parse(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DXF file: %w", err)
		}
		return drawing, nil

	case ".scad":
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", filePath, err)
		}
		renderer := openscad.NewRenderer(filepath.Dir(absPath))

		temp, err := os.CreateTemp("", "gotoolpath_*.dxf")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		tempFile := temp.Name()
		temp.Close()
		defer os.Remove(tempFile)

		if err := renderer.RenderToDXF(ctx, absPath, tempFile); err != nil {
			return nil, fmt.Errorf("failed to render OpenSCAD file: %w", err)
		}

		drawing, err := dxf.Parse(tempFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rendered DXF: %w", err)
		}
		drawing.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		return drawing, nil

	default:
		return nil, fmt.Errorf("%w: %s (expected .dxf or .scad)", ErrUnsupportedFile, ext)
	}
}

// WatchedFiles returns the files whose change requires a reload: the source
// itself and, for OpenSCAD, everything it uses or includes
func WatchedFiles(filePath string) ([]string, error) {
	if !isOpenSCAD(filePath) {
		return []string{filePath}, nil
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", filePath, err)
	}
	renderer := openscad.NewRenderer(filepath.Dir(absPath))
	deps, err := renderer.ResolveDependencies(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	return deps, nil
}
