package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gotoolpath/internal/app"
	"github.com/spf13/cobra"
)

var (
	previewOutput string
	previewWidth  int
	previewHeight int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Render contours and toolpaths to PNG",
	Long:  "Run the toolpath pipeline and draw the source contours (blue), the toolpaths (red) and their start points (green).",
	Args:  cobra.ExactArgs(1),
	Run:   runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	addPipelineFlags(previewCmd)

	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Output PNG (default: <drawing>.png)")
	previewCmd.Flags().IntVar(&previewWidth, "width", 0, "Image width (default: preview.width)")
	previewCmd.Flags().IntVar(&previewHeight, "height", 0, "Image height (default: preview.height)")
}

func runPreview(cmd *cobra.Command, args []string) {
	out := runPipeline(cmd.Context(), cmd, args[0])

	path := previewOutput
	if path == "" {
		path = out.Drawing.Name + ".png"
	}
	if err := writePreview(out, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing preview: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Preview written to %s\n", path)
}

func writePreview(out *app.Output, path string) error {
	opts := newApp().PreviewOptions()
	if previewWidth > 0 {
		opts.Width = previewWidth
	}
	if previewHeight > 0 {
		opts.Height = previewHeight
	}

	w, err := app.CreateOutput(path)
	if err != nil {
		return err
	}
	if err := app.WritePreview(w, out, opts); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
