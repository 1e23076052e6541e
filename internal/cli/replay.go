package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vonderborch/Velentr.Input-sub001/internal/harness"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Runs int
}

// ReplayScenarioResult holds the replay result for a single scenario.
type ReplayScenarioResult struct {
	Scenario      string `json:"scenario"`
	Runs          int    `json:"runs"`
	Fires         int    `json:"fires"`
	Deterministic bool   `json:"deterministic"`
	DivergedAtRun int    `json:"diverged_at_run,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Scenarios        []ReplayScenarioResult `json:"scenarios"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario-file>...",
		Short: "Replay scenarios and verify determinism",
		Long: `Run each scenario several times on fresh engines and compare the
traces byte for byte.

Exit codes:
  0 - All scenarios are deterministic
  1 - Determinism verification failed (traces differ between runs)
  2 - Command error (scenario not found, etc.)

Examples:
  velentr replay ./scenarios/jump.yaml
  velentr replay ./scenarios/*.yaml --runs 5 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Runs, "runs", 2, "number of runs to compare (at least 2)")

	return cmd
}

func runReplay(opts *ReplayOptions, paths []string, cmd *cobra.Command) error {
	if opts.Runs < 2 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--runs must be at least 2, got %d", opts.Runs))
	}

	result := ReplayResult{
		Scenarios:        make([]ReplayScenarioResult, 0, len(paths)),
		AllDeterministic: true,
	}
	for _, path := range paths {
		r, err := replayScenario(path, opts.Runs)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay %s", path), err)
		}
		result.Scenarios = append(result.Scenarios, r)
		if !r.Deterministic {
			result.AllDeterministic = false
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range result.Scenarios {
			if r.Deterministic {
				fmt.Fprintf(w, "✓ %s: %d runs, %d fires each\n", r.Scenario, r.Runs, r.Fires)
			} else {
				fmt.Fprintf(w, "✗ %s: trace diverged on run %d\n", r.Scenario, r.DivergedAtRun)
			}
		}
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func replayScenario(path string, runs int) (ReplayScenarioResult, error) {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return ReplayScenarioResult{}, err
	}

	out := ReplayScenarioResult{Scenario: scenario.Name, Runs: runs, Deterministic: true}
	var first []byte
	for i := 1; i <= runs; i++ {
		result, err := harness.Run(scenario)
		if err != nil {
			return ReplayScenarioResult{}, err
		}
		snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
		if err != nil {
			return ReplayScenarioResult{}, err
		}
		if i == 1 {
			first = snapshot
			out.Fires = len(result.Trace)
			continue
		}
		if !bytes.Equal(first, snapshot) {
			out.Deterministic = false
			out.DivergedAtRun = i
			break
		}
	}
	return out, nil
}
