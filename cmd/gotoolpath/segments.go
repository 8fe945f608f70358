package main

import (
	"fmt"

	"github.com/philipparndt/gotoolpath/pkg/analysis"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"github.com/spf13/cobra"
)

var (
	segmentsCount     int
	segmentsLongest   bool
	segmentsShortest  bool
	segmentsMinLength float64
	segmentsMaxLength float64
	segmentsContours  bool
)

var segmentsCmd = &cobra.Command{
	Use:     "segments [file]",
	Aliases: []string{"offset"},
	Short:   "List the segments of the generated toolpaths",
	Long:    "Run the toolpath pipeline and list the resulting segments, including longest, shortest, or segments within a specific length range.",
	Args:    cobra.ExactArgs(1),
	Run:     runSegments,
}

func init() {
	rootCmd.AddCommand(segmentsCmd)
	addPipelineFlags(segmentsCmd)

	segmentsCmd.Flags().IntVarP(&segmentsCount, "count", "n", 20, "Number of segments to display")
	segmentsCmd.Flags().BoolVar(&segmentsLongest, "longest", false, "Show longest segments")
	segmentsCmd.Flags().BoolVar(&segmentsShortest, "shortest", false, "Show shortest segments")
	segmentsCmd.Flags().Float64Var(&segmentsMinLength, "min", 0.0, "Minimum segment length filter")
	segmentsCmd.Flags().Float64Var(&segmentsMaxLength, "max", 0.0, "Maximum segment length filter")
	segmentsCmd.Flags().BoolVar(&segmentsContours, "contours", false, "List the source contours instead of the toolpaths")
}

func runSegments(cmd *cobra.Command, args []string) {
	out := runPipeline(cmd.Context(), cmd, args[0])

	var paths []*toolpath.Path
	if segmentsContours {
		paths = out.Contours()
	} else {
		paths = out.Toolpaths()
	}
	result := analysis.AnalyzePaths(paths)

	var segments []analysis.SegmentInfo
	var title string

	if segmentsLongest {
		segments = analysis.FindLongestSegments(result, segmentsCount)
		title = fmt.Sprintf("Top %d Longest Segments", len(segments))
	} else if segmentsShortest {
		segments = analysis.FindShortestSegments(result, segmentsCount)
		title = fmt.Sprintf("Top %d Shortest Segments", len(segments))
	} else if segmentsMaxLength > 0 {
		segments = analysis.FindSegmentsByLength(result, segmentsMinLength, segmentsMaxLength)
		title = fmt.Sprintf("Segments between %.4f and %.4f mm (found %d)", segmentsMinLength, segmentsMaxLength, len(segments))
		if len(segments) > segmentsCount {
			segments = segments[:segmentsCount]
		}
	} else {
		segments = result.AllSegments
		title = fmt.Sprintf("All Segments (showing first %d of %d)", min(segmentsCount, len(segments)), len(segments))
		if len(segments) > segmentsCount {
			segments = segments[:segmentsCount]
		}
	}

	fmt.Println(title)
	fmt.Println("====================")
	fmt.Printf("Paths: %d, segments: %d, total length: %s\n", result.PathCount, result.SegmentCount,
		analysis.FormatMeasurement(result.TotalLength, ""))
	fmt.Printf("Min segment length: %.4f mm\n", result.MinSegmentLength)
	fmt.Printf("Max segment length: %.4f mm\n", result.MaxSegmentLength)
	fmt.Printf("Avg segment length: %.4f mm\n\n", result.AvgSegmentLength)

	if len(segments) > 0 {
		fmt.Printf("%-24s %-5s %-7s %-24s %-24s %-12s\n", "Path", "#", "Kind", "Start", "End", "Length")
		fmt.Println("------------------------------------------------------------------------------------------------------")
		for _, s := range segments {
			fmt.Printf("%-24s %-5d %-7s %-24s %-24s %-12.4f\n",
				s.Path, s.Index, s.Kind,
				analysis.FormatVector(s.Start),
				analysis.FormatVector(s.End),
				s.Length)
		}
	} else {
		fmt.Println("No segments found matching the criteria.")
	}
}
