package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/engine"
	"github.com/vonderborch/Velentr.Input-sub001/internal/harness"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Strict   bool
	Interval time.Duration // overrides VELENTR_TICK_INTERVAL when set
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <bindings-file>",
		Short: "Tick bindings live, reading input from stdin",
		Long: `Start the tick loop over a bindings file and print every fire.

Input is read from stdin, one command per line:
  press <source.signal>          hold a button or key
  release <source.signal>        let it go
  set <source.signal> <value>    hold an analog reading (0.7, {x: 0.9, y: 0})
  pulse <source.signal> <value>  reading for one tick only
  focus on|off                   window focus
  wait <duration>                pause reading (e.g. 50ms)
  quit                           stop

The loop stops at end of input, on quit, or on Ctrl-C.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject conditions on unconfigured device families")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "tick interval (default from VELENTR_TICK_INTERVAL)")

	return cmd
}

func runEngine(opts *RunOptions, path string, cmd *cobra.Command) error {
	loaded, verrs, err := LoadBindings(path, opts.Strict || opts.Config.StrictDevices)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load bindings", err)
	}
	if len(verrs) > 0 {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return outputValidationErrors(formatter, verrs)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = opts.Config.TickInterval
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	var focused atomic.Bool
	focused.Store(true)

	engineOpts := append(opts.Config.Options(),
		engine.WithFocus(engine.FocusFunc(focused.Load)),
		engine.WithLogger(slog.Default()),
	)
	eng := engine.New(loaded.Hub, engineOpts...)

	out := &lockedWriter{w: cmd.OutOrStdout()}
	for _, n := range loaded.Named {
		name := n.Name
		n.Condition.Subscribe(func(args *condition.EventArgs) {
			fmt.Fprintln(out, describeFire(name, args))
		})
		if _, err := eng.Track(n.Name, n.Condition); err != nil {
			return WrapExitError(ExitCommandError, "failed to track condition", err)
		}
	}
	slog.Info("bindings loaded", "path", path, "conditions", len(loaded.Named), "interval", interval)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		defer cancel()
		readCommands(ctx, cmd.InOrStdin(), loaded.Hub, &focused, cmd.ErrOrStderr())
	}()

	if err := eng.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	slog.Info("engine stopped", "frames", eng.Clock().Current())
	return nil
}

// readCommands applies input commands until EOF, quit or cancellation.
// Bad lines are reported on errOut and skipped.
func readCommands(ctx context.Context, in io.Reader, hub *device.Hub, focused *atomic.Bool, errOut io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wait, quit, err := applyCommand(line, hub, focused)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if quit {
			return
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
}

// applyCommand executes one input line.
func applyCommand(line string, hub *device.Hub, focused *atomic.Bool) (wait time.Duration, quit bool, err error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "quit", "exit":
		return 0, true, nil
	case "wait":
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, false, fmt.Errorf("wait: %w", err)
		}
		return d, false, nil
	case "focus":
		switch rest {
		case "on":
			focused.Store(true)
		case "off":
			focused.Store(false)
		default:
			return 0, false, fmt.Errorf("focus: want on or off, got %q", rest)
		}
		return 0, false, nil
	case "press", "release", "set", "pulse":
	default:
		return 0, false, fmt.Errorf("unknown command %q", verb)
	}

	key, raw, _ := strings.Cut(rest, " ")
	src, sig, err := harness.ParseInputKey(key)
	if err != nil {
		return 0, false, err
	}
	a, ok := hub.Adapter(src)
	if !ok {
		return 0, false, fmt.Errorf("device family %s is not configured", src)
	}

	switch verb {
	case "press":
		a.Press(sig)
	case "release":
		a.Release(sig)
	default:
		v, err := parseValue(raw)
		if err != nil {
			return 0, false, fmt.Errorf("%s %s: %w", verb, key, err)
		}
		if verb == "set" {
			a.Set(sig, v)
		} else {
			a.Pulse(sig, v)
		}
	}
	return 0, false, nil
}

// parseValue reads a reading written as YAML: 0.7, true or {x: 1, y: 2}.
func parseValue(raw string) (value.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("missing value")
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	return value.FromAny(decoded)
}

func describeFire(name string, args *condition.EventArgs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fired %s frame=%d", name, args.Frame)
	if args.Signal != "" {
		fmt.Fprintf(&b, " %s.%s", args.Source, args.Signal)
		if args.Value != nil {
			fmt.Fprintf(&b, "=%s", args.Value)
		}
	}
	if args.Elapsed > 0 {
		fmt.Fprintf(&b, " held=%s", args.Elapsed)
	}
	return b.String()
}

// lockedWriter serialises writes from fire handlers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
