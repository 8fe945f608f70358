package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/philipparndt/gotoolpath/internal/config"
	"github.com/philipparndt/gotoolpath/pkg/dxf"
	"github.com/philipparndt/gotoolpath/pkg/gcode"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/philipparndt/gotoolpath/pkg/viewer"
	"github.com/philipparndt/gotoolpath/pkg/watcher"
)

// App ties the drawing loader, the toolpath engine and the outputs together
type App struct {
	Config *config.Config
	Log    *slog.Logger
}

// New creates an app. A nil logger discards output.
func New(cfg *config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{Config: cfg, Log: log}
}

// Job is one source file with the toolpath settings to apply
type Job struct {
	Source  string
	Layer   string // empty: every layer
	Options toolpath.Options
}

// Output is the result of running a job
type Output struct {
	Drawing *dxf.Drawing
	Layers  []*toolpath.Result
}

// Contours returns the ordered source contours of all layers
func (o *Output) Contours() []*toolpath.Path {
	var paths []*toolpath.Path
	for _, r := range o.Layers {
		paths = append(paths, r.Contours...)
	}
	return paths
}

// Toolpaths returns the compensated toolpaths of all layers
func (o *Output) Toolpaths() []*toolpath.Path {
	var paths []*toolpath.Path
	for _, r := range o.Layers {
		paths = append(paths, r.Toolpaths...)
	}
	return paths
}

// Run loads the job's source and generates its toolpaths
func (a *App) Run(ctx context.Context, job Job) (*Output, error) {
	start := time.Now()
	drawing, err := LoadDrawing(ctx, job.Source)
	if err != nil {
		return nil, err
	}
	if drawing.Skipped > 0 {
		a.Log.Warn("skipped unsupported entities", "file", job.Source, "count", drawing.Skipped)
	}

	layers, err := Process(drawing, job.Layer, job.Options)
	if err != nil {
		return nil, err
	}
	a.Log.Info("generated toolpaths", "file", job.Source, "layers", len(layers),
		"side", job.Options.Side, "radius", job.Options.ToolRadius, "elapsed", time.Since(start))
	return &Output{Drawing: drawing, Layers: layers}, nil
}

// Process runs the toolpath pipeline on one layer of a drawing, or on all
// layers when layer is empty
func Process(drawing *dxf.Drawing, layer string, opts toolpath.Options) ([]*toolpath.Result, error) {
	names := drawing.LayerNames()
	if layer != "" {
		names = []string{layer}
	}

	results := make([]*toolpath.Result, 0, len(names))
	for _, name := range names {
		entities, err := drawing.Layer(name)
		if err != nil {
			return nil, err
		}
		results = append(results, toolpath.Generate(name, entities, opts))
	}
	return results, nil
}

// WriteGCode writes the toolpaths of all layers as one program
func WriteGCode(w io.Writer, out *Output, params gcode.Params) error {
	program := gcode.FromPaths(out.Toolpaths(), params)
	if _, err := program.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write G-code: %w", err)
	}
	return nil
}

// WritePreview draws contours and toolpaths as PNG
func WritePreview(w io.Writer, out *Output, opts viewer.Options) error {
	scene := viewer.Scene{
		Title:     out.Drawing.Name,
		Contours:  out.Contours(),
		Toolpaths: out.Toolpaths(),
	}
	return viewer.WritePNG(w, scene, opts)
}

// PreviewOptions returns the viewer options from the preview section
func (a *App) PreviewOptions() viewer.Options {
	opts := viewer.DefaultOptions()
	opts.Width = a.Config.Preview.Width
	opts.Height = a.Config.Preview.Height
	opts.Margin = a.Config.Preview.Margin
	return opts
}

// CreateOutput opens a file for writing; "" and "-" select stdout
func CreateOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Watch calls regenerate once and again whenever the source or one of its
// dependencies changes, until ctx is done. Dependencies are resolved again
// after each change because includes may have been added or removed.
func (a *App) Watch(ctx context.Context, source string, debounce time.Duration, regenerate func(context.Context) error) error {
	fw, err := watcher.NewFileWatcher(debounce, a.Log)
	if err != nil {
		return err
	}
	defer fw.Close()

	changes := make(chan string, 1)
	callback := func(file string) {
		select {
		case changes <- file:
		default:
		}
	}

	watch := func() error {
		files, err := WatchedFiles(source)
		if err != nil {
			return err
		}
		if err := fw.RemoveAll(); err != nil {
			return fmt.Errorf("failed to reset watcher: %w", err)
		}
		if err := fw.Watch(files, callback); err != nil {
			return fmt.Errorf("failed to watch files: %w", err)
		}
		a.Log.Info("watching", "files", len(files))
		return nil
	}

	if err := watch(); err != nil {
		return err
	}
	fw.Start(ctx)

	if err := regenerate(ctx); err != nil {
		a.Log.Error("regeneration failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case file := <-changes:
			a.Log.Info("file changed", "file", file)
			if err := regenerate(ctx); err != nil {
				a.Log.Error("regeneration failed", "error", err)
			}
			if err := watch(); err != nil {
				a.Log.Error("failed to refresh watched files", "error", err)
			}
		}
	}
}
