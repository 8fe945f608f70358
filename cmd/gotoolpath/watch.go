package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	watchOutput   string
	watchPreview  string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Regenerate G-code whenever the drawing changes",
	Long: `Watch a DXF file, or an OpenSCAD file together with everything it uses or
includes, and regenerate the G-code (and optionally the preview) after every
change. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addPipelineFlags(watchCmd)

	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "G-code output file (required)")
	watchCmd.Flags().StringVar(&watchPreview, "preview", "", "Also write a PNG preview to this file")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before regenerating")
	watchCmd.MarkFlagRequired("output")
}

func runWatch(cmd *cobra.Command, args []string) {
	source := args[0]
	job, err := newJob(cmd, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := newApp()
	regenerate := func(ctx context.Context) error {
		out, err := a.Run(ctx, job)
		if err != nil {
			return err
		}
		if err := writeGCode(out, watchOutput); err != nil {
			return err
		}
		if watchPreview != "" {
			if err := writePreview(out, watchPreview); err != nil {
				return err
			}
		}
		fmt.Printf("%s: %s regenerated\n", time.Now().Format(time.TimeOnly), watchOutput)
		return nil
	}

	fmt.Printf("Watching %s, press Ctrl+C to stop\n", source)
	if err := a.Watch(cmd.Context(), source, watchDebounce, regenerate); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", source, err)
		os.Exit(1)
	}
}
