package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vonderborch/Velentr.Input-sub001/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Condition string // optional - filter to one tracked condition
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Timeline []harness.TraceEvent `json:"timeline"`
	Stats    TraceStats           `json:"stats"`
	Errors   []string             `json:"errors,omitempty"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Ticks        int            `json:"ticks"`
	TotalFires   int            `json:"total_fires"`
	PerCondition map[string]int `json:"per_condition"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario-file>",
		Short: "Show the fire timeline of a scenario",
		Long: `Run one scenario and print every fire in tick order.

The output includes:
- Timeline: each fire with its step, frame, time, event id and sample
- Stats: ticks driven and fires per condition

Examples:
  velentr trace ./scenarios/jump.yaml
  velentr trace ./scenarios/jump.yaml --condition jump
  velentr trace ./scenarios/jump.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Condition, "condition", "", "only show fires of this condition")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	out := buildTraceResult(scenario.Name, result, opts.Condition)
	if opts.Format == "json" {
		return formatter.Success(out)
	}
	printTraceText(formatter, out)
	return nil
}

func buildTraceResult(name string, result *harness.Result, only string) TraceResult {
	out := TraceResult{
		Scenario: name,
		Pass:     result.Pass,
		Timeline: []harness.TraceEvent{},
		Errors:   result.Errors,
		Stats: TraceStats{
			Ticks:        result.Ticks,
			PerCondition: make(map[string]int),
		},
	}
	for _, ev := range result.Trace {
		if only != "" && ev.Condition != only {
			continue
		}
		out.Timeline = append(out.Timeline, ev)
		out.Stats.PerCondition[ev.Condition]++
	}
	out.Stats.TotalFires = len(out.Timeline)
	return out
}

func printTraceText(formatter *OutputFormatter, out TraceResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Scenario: %s\n\n", out.Scenario)
	fmt.Fprintln(w, "Timeline:")
	if len(out.Timeline) == 0 {
		fmt.Fprintln(w, "  (no fires)")
	}
	for _, ev := range out.Timeline {
		fmt.Fprintf(w, "  [frame %d @ %dms] %s %s", ev.Frame, ev.AtMS, ev.ID, ev.Condition)
		if ev.Signal != "" {
			fmt.Fprintf(w, " %s.%s=%v", ev.Source, ev.Signal, ev.Value)
		}
		if len(ev.Children) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(ev.Children, " + "))
		}
		if ev.ElapsedMS > 0 {
			fmt.Fprintf(w, " held %dms", ev.ElapsedMS)
		}
		fmt.Fprintln(w)
		formatter.VerboseLog("step %d fired %s", ev.Step, ev.Condition)
	}

	names := make([]string, 0, len(out.Stats.PerCondition))
	for name := range out.Stats.PerCondition {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "  Ticks: %d\n", out.Stats.Ticks)
	fmt.Fprintf(w, "  Fires: %d\n", out.Stats.TotalFires)
	for _, name := range names {
		fmt.Fprintf(w, "    %s: %d\n", name, out.Stats.PerCondition[name])
	}
	if !out.Pass {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Expectation failures:")
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}
