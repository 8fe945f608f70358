package main

import (
	"fmt"

	"github.com/philipparndt/gotoolpath/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a drawing",
	Long:  "Show the layers of a drawing with their ordered contours: closed or open, winding, length, area and bounding box.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	addPipelineFlags(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]
	out := runPipeline(cmd.Context(), cmd, filename)

	fmt.Println("Drawing Information")
	fmt.Println("===================")
	fmt.Printf("Name: %s\n", out.Drawing.Name)
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Entities: %d", out.Drawing.EntityCount())
	if out.Drawing.Skipped > 0 {
		fmt.Printf(" (%d unsupported skipped)", out.Drawing.Skipped)
	}
	fmt.Println()

	for _, layer := range out.Layers {
		result := analysis.AnalyzePaths(layer.Contours)

		fmt.Printf("\nLayer %q:\n", layer.Name)
		fmt.Printf("  Paths: %d (%d closed)\n", result.PathCount, result.ClosedCount)
		fmt.Printf("  Segments: %d (%d lines, %d arcs)\n", result.SegmentCount, result.LineCount, result.ArcCount)
		fmt.Printf("  Total length: %s\n", analysis.FormatMeasurement(result.TotalLength, ""))
		if result.PathCount > 0 {
			fmt.Printf("  Bounding box: %s - %s\n",
				analysis.FormatVector(result.BoundingBox.Min), analysis.FormatVector(result.BoundingBox.Max))
			fmt.Printf("  Dimensions: %s x %s\n",
				analysis.FormatMeasurement(result.Dimensions.X, ""), analysis.FormatMeasurement(result.Dimensions.Y, ""))
		}

		for _, p := range result.Paths {
			state := "open"
			if p.Closed {
				state = "closed, " + analysis.FormatDirection(p.Direction)
			}
			fmt.Printf("    %-24s %3d segments  %-28s length %s", p.Name, p.Segments, state,
				analysis.FormatMeasurement(p.Length, ""))
			if p.Closed {
				fmt.Printf("  area %s", analysis.FormatMeasurement(p.Area, "mm²"))
			}
			fmt.Println()
		}

		toolpaths := analysis.AnalyzePaths(layer.Toolpaths)
		fmt.Printf("  Toolpaths: %d, length %s\n", toolpaths.PathCount,
			analysis.FormatMeasurement(toolpaths.TotalLength, ""))
	}
}
