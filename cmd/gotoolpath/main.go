package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/philipparndt/gotoolpath/internal/app"
	"github.com/philipparndt/gotoolpath/internal/config"
	"github.com/philipparndt/gotoolpath/internal/logging"
	"github.com/philipparndt/gotoolpath/pkg/dxf"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/philipparndt/gotoolpath/version"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	verbose     bool
	veryVerbose bool
	quiet       bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gotoolpath",
	Short: "Toolpath generator and machine sequencer for 2-D CAM",
	Long: `gotoolpath turns the lines, arcs, circles and polylines of a DXF (or 2-D
OpenSCAD) drawing into ordered, tool radius compensated toolpaths, writes
them as G-code and previews, and drives the machine over a serial link.`,
	Version:          version.GetFullVersion(),
	PersistentPreRun: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultFile, "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show progress messages")
	rootCmd.PersistentFlags().BoolVar(&veryVerbose, "vv", false, "Show debug messages")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only show errors")
}

func setup(cmd *cobra.Command, args []string) {
	logger = logging.New(os.Stderr, logging.LevelFromFlags(veryVerbose, verbose, quiet))
	toolpath.SetLogger(logger)
	dxf.SetLogger(logger)

	c, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = c
}

func newApp() *app.App {
	return app.New(cfg, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
