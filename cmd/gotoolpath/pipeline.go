package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipparndt/gotoolpath/internal/app"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/spf13/cobra"
)

var (
	pipelineLayer    string
	pipelineDiameter float64
	pipelineSide     string
)

// addPipelineFlags registers the toolpath overrides on a command
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pipelineLayer, "layer", "l", "", "Only process this layer (default: toolpath.layer or all layers)")
	cmd.Flags().Float64VarP(&pipelineDiameter, "diameter", "d", 0, "Tool diameter (default: toolpath.tool_diameter)")
	cmd.Flags().StringVarP(&pipelineSide, "side", "s", "", "Tool side: on, outside, inside, left or right (default: toolpath.side)")
}

// newJob merges the configuration with the flags given on the command line
func newJob(cmd *cobra.Command, source string) (app.Job, error) {
	opts, err := cfg.ToolpathOptions()
	if err != nil {
		return app.Job{}, err
	}
	if cmd.Flags().Changed("diameter") {
		if pipelineDiameter < 0 {
			return app.Job{}, fmt.Errorf("diameter must not be negative, got %g", pipelineDiameter)
		}
		opts.ToolRadius = pipelineDiameter / 2
	}
	if cmd.Flags().Changed("side") {
		if opts.Side, err = toolpath.ParseSide(pipelineSide); err != nil {
			return app.Job{}, err
		}
	}

	layer := cfg.Toolpath.Layer
	if cmd.Flags().Changed("layer") {
		layer = pipelineLayer
	}
	return app.Job{Source: source, Layer: layer, Options: opts}, nil
}

// runPipeline loads a source and generates its toolpaths, exiting on error
func runPipeline(ctx context.Context, cmd *cobra.Command, source string) *app.Output {
	job, err := newJob(cmd, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := newApp().Run(ctx, job)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", source, err)
		os.Exit(1)
	}
	return out
}
