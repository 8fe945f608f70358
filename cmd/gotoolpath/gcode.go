package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gotoolpath/internal/app"
	"github.com/spf13/cobra"
)

var gcodeOutput string

var gcodeCmd = &cobra.Command{
	Use:   "gcode [file]",
	Short: "Generate G-code for a drawing",
	Long:  "Run the toolpath pipeline and write the toolpaths as a G-code program. Feeds and Z levels come from the gcode section of the configuration.",
	Args:  cobra.ExactArgs(1),
	Run:   runGCode,
}

func init() {
	rootCmd.AddCommand(gcodeCmd)
	addPipelineFlags(gcodeCmd)

	gcodeCmd.Flags().StringVarP(&gcodeOutput, "output", "o", "-", "Output file (- for stdout)")
}

func runGCode(cmd *cobra.Command, args []string) {
	out := runPipeline(cmd.Context(), cmd, args[0])

	if err := writeGCode(out, gcodeOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing G-code: %v\n", err)
		os.Exit(1)
	}
}

func writeGCode(out *app.Output, path string) error {
	w, err := app.CreateOutput(path)
	if err != nil {
		return err
	}
	if err := app.WriteGCode(w, out, cfg.GCodeParams()); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if path != "-" && path != "" {
		logger.Info("wrote G-code", "file", path, "toolpaths", len(out.Toolpaths()))
	}
	return nil
}
