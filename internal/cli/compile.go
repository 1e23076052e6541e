package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vonderborch/Velentr.Input-sub001/internal/binding"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	Conditions  int            `json:"conditions"`
	Devices     []string       `json:"devices"`
	Kinds       map[string]int `json:"kinds"`
	Combinators int            `json:"combinators"`
	MaxDepth    int            `json:"max_depth"`
}

// CompilationResult is the normalized bindings plus statistics.
type CompilationResult struct {
	Bindings *binding.File    `json:"bindings"`
	Stats    CompilationStats `json:"stats"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <bindings-file>",
		Short: "Normalize a bindings file to JSON",
		Long: `Load a bindings file in any supported format, validate it, and emit
the normalized form as JSON. CUE, YAML and TOML files describing the same
bindings compile to the same output.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, verrs, err := LoadBindings(path, opts.Config.StrictDevices)
	if err != nil {
		code, msg := loadErrorCode(err)
		return outputValidateError(formatter, code, msg, nil)
	}
	if len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	result := &CompilationResult{
		Bindings: loaded.File,
		Stats:    calculateStats(loaded),
	}
	for _, n := range loaded.Named {
		formatter.VerboseLog("Compiled condition: %s", n.Name)
	}

	if opts.Output != "" {
		if err := writeBindingsToFile(loaded.File, opts.Output); err != nil {
			return outputValidateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// calculateStats computes summary statistics over the built bindings.
func calculateStats(loaded *Loaded) CompilationStats {
	stats := CompilationStats{
		Conditions: len(loaded.Named),
		Kinds:      make(map[string]int),
	}
	for _, src := range loaded.Hub.Sources() {
		stats.Devices = append(stats.Devices, src.String())
	}

	var walk func(s binding.Spec, depth int)
	walk = func(s binding.Spec, depth int) {
		stats.Kinds[s.Kind]++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		if s.IsCombinator() {
			stats.Combinators++
		}
		for _, c := range s.Children {
			walk(c, depth+1)
		}
	}
	for _, s := range loaded.File.Conditions {
		walk(s, 1)
	}
	return stats
}

func marshalBindings(f *binding.File) ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeBindingsToFile(f *binding.File, path string) error {
	data, err := marshalBindings(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, output string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if output == "" {
		data, err := marshalBindings(result.Bindings)
		if err != nil {
			return err
		}
		_, err = formatter.Writer.Write(data)
		return err
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d condition(s) to %s\n", result.Stats.Conditions, output)
	fmt.Fprintf(w, "  Devices: %v\n", result.Stats.Devices)
	fmt.Fprintf(w, "  Combinators: %d (max depth %d)\n", result.Stats.Combinators, result.Stats.MaxDepth)
	return nil
}
