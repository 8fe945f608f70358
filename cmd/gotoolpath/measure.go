package main

import (
	"fmt"

	"github.com/philipparndt/gotoolpath/pkg/analysis"
	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	point1X, point1Y float64
	point2X, point2Y float64
)

var measureCmd = &cobra.Command{
	Use:   "measure [file]",
	Short: "Measure distance between two points",
	Long: `Measure the straight-line distance between two points of a drawing.
The nearest contour vertices to both points are reported as well.`,
	Args: cobra.ExactArgs(1),
	Run:  runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)
	addPipelineFlags(measureCmd)

	measureCmd.Flags().Float64Var(&point1X, "x1", 0.0, "X coordinate of first point")
	measureCmd.Flags().Float64Var(&point1Y, "y1", 0.0, "Y coordinate of first point")
	measureCmd.Flags().Float64Var(&point2X, "x2", 0.0, "X coordinate of second point")
	measureCmd.Flags().Float64Var(&point2Y, "y2", 0.0, "Y coordinate of second point")

	measureCmd.MarkFlagsRequiredTogether("x1", "y1", "x2", "y2")
}

func runMeasure(cmd *cobra.Command, args []string) {
	p1 := geometry.NewVector2(point1X, point1Y)
	p2 := geometry.NewVector2(point2X, point2Y)

	out := runPipeline(cmd.Context(), cmd, args[0])
	contours := out.Contours()

	fmt.Println("Point-to-Point Measurement")
	fmt.Println("==========================")

	nearest1, dist1 := analysis.FindNearestVertex(contours, p1)
	nearest2, dist2 := analysis.FindNearestVertex(contours, p2)

	fmt.Printf("\nPoint 1: %s\n", analysis.FormatVector(p1))
	if dist1 > 0 {
		fmt.Printf("  Nearest vertex: %s (distance: %.4f)\n", analysis.FormatVector(nearest1), dist1)
	}

	fmt.Printf("\nPoint 2: %s\n", analysis.FormatVector(p2))
	if dist2 > 0 {
		fmt.Printf("  Nearest vertex: %s (distance: %.4f)\n", analysis.FormatVector(nearest2), dist2)
	}

	fmt.Printf("\nDirect distance: %s\n", analysis.FormatMeasurement(p1.Distance(p2), ""))

	if dist1 > 0 || dist2 > 0 {
		fmt.Printf("Distance between nearest vertices: %s\n", analysis.FormatMeasurement(nearest1.Distance(nearest2), ""))
	}
}
