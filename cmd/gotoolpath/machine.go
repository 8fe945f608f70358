package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/philipparndt/gotoolpath/internal/app"
	"github.com/philipparndt/gotoolpath/pkg/journal"
	"github.com/philipparndt/gotoolpath/pkg/sequencer"
	"github.com/spf13/cobra"
)

var (
	machinePort string
	macroList   bool
)

var macroCmd = &cobra.Command{
	Use:   "macro [name]",
	Short: "Run a configured macro on the machine",
	Long: `Send the steps of a macro from the configuration over the serial port. Each
step waits for its expected reply; after a failed step the remaining steps are
skipped. The run is recorded in the journal.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMacro,
}

var sendCmd = &cobra.Command{
	Use:   "send [file.nc]",
	Short: "Stream a G-code file to the machine",
	Long:  "Send a G-code program line by line, waiting for \"ok\" after every line.",
	Args:  cobra.ExactArgs(1),
	Run:   runSend,
}

func init() {
	rootCmd.AddCommand(macroCmd)
	rootCmd.AddCommand(sendCmd)

	for _, cmd := range []*cobra.Command{macroCmd, sendCmd} {
		cmd.Flags().StringVarP(&machinePort, "port", "p", "", "Serial port (default: serial.port)")
	}
	macroCmd.Flags().BoolVar(&macroList, "list", false, "List the configured macros")
}

func runMacro(cmd *cobra.Command, args []string) {
	if macroList || len(args) == 0 {
		fmt.Println("Configured macros:")
		for _, name := range cfg.MacroNames() {
			fmt.Printf("  %-20s %d step(s)\n", name, len(cfg.Macros[name]))
		}
		return
	}

	name := args[0]
	// resolve before opening the port so typos fail fast
	if _, err := cfg.Steps(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary := runOnMachine(cmd.Context(), func(ctx context.Context, m *app.Machine) (sequencer.Summary, error) {
		return m.Macro(ctx, name)
	})
	exitWithSummary(summary)
}

func runSend(cmd *cobra.Command, args []string) {
	filename := args[0]
	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening G-code file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	summary := runOnMachine(cmd.Context(), func(ctx context.Context, m *app.Machine) (sequencer.Summary, error) {
		return m.Send(ctx, filepath.Base(filename), file)
	})
	exitWithSummary(summary)
}

// runOnMachine opens the port and the journal, runs fn and reports errors
func runOnMachine(ctx context.Context, fn func(context.Context, *app.Machine) (sequencer.Summary, error)) sequencer.Summary {
	name := cfg.Serial.Port
	if machinePort != "" {
		name = machinePort
	}
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: no serial port configured (use --port or serial.port)")
		os.Exit(1)
	}

	a := newApp()
	j, err := a.OpenJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	if j != nil {
		defer j.Close()
	}

	port, err := sequencer.OpenSerial(name, cfg.Serial.Baud, cfg.Serial.ReadTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary, err := fn(ctx, a.NewMachine(port, j))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return summary
}

func exitWithSummary(summary sequencer.Summary) {
	out := termenv.NewOutput(os.Stdout)

	var style termenv.Style
	switch {
	case !summary.OK():
		style = out.String(summary.String()).Foreground(termenv.ANSIRed).Bold()
	case summary.Warnings > 0:
		style = out.String(fmt.Sprintf("%s (%d warning(s))", summary, summary.Warnings)).Foreground(termenv.ANSIYellow)
	default:
		style = out.String(summary.String()).Foreground(termenv.ANSIGreen)
	}
	fmt.Println(style)

	if !summary.OK() {
		os.Exit(1)
	}
}

var (
	historyLimit int
	historyRun   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent machine runs from the journal",
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := sequencer.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found.")
			return
		}
		for _, p := range ports {
			fmt.Println(p)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(portsCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "count", "n", 20, "Number of runs to display")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "Show the steps of one run")
}

func runHistory(cmd *cobra.Command, args []string) {
	j, err := newApp().OpenJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	if j == nil {
		fmt.Fprintln(os.Stderr, "Error: journal disabled (journal.path is empty)")
		os.Exit(1)
	}
	defer j.Close()

	if historyRun > 0 {
		printSteps(cmd.Context(), j, historyRun)
		return
	}

	runs, err := j.Runs(cmd.Context(), historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := termenv.NewOutput(os.Stdout)
	fmt.Printf("%-6s %-20s %-20s %-6s %-7s %-9s %-8s\n", "Run", "Macro", "Started", "Steps", "Errors", "Warnings", "Skipped")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, r := range runs {
		line := fmt.Sprintf("%-6d %-20s %-20s %-6d %-7d %-9d %-8d", r.ID, r.Macro,
			r.Started.Format("2006-01-02 15:04:05"), r.Summary.Steps, r.Summary.Errors, r.Summary.Warnings, r.Summary.Skipped)
		switch {
		case r.Finished.IsZero():
			fmt.Println(out.String(line + " (interrupted)").Faint())
		case !r.Summary.OK():
			fmt.Println(out.String(line).Foreground(termenv.ANSIRed))
		default:
			fmt.Println(line)
		}
	}
}

func printSteps(ctx context.Context, j *journal.Journal, id int64) {
	steps, err := j.Steps(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-4s %-8s %-28s %-20s %-10s %s\n", "#", "Status", "Code", "Reply", "Elapsed", "Message")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, s := range steps {
		fmt.Printf("%-4d %-8s %-28s %-20s %-10s %s\n", s.Seq, s.Status, s.Code, s.Reply, s.Elapsed, s.Message)
		if s.Error != "" {
			fmt.Printf("     %s\n", s.Error)
		}
	}
}
