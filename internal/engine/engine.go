package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/tracked"
)

// Firing records one dispatched event.
type Firing struct {
	Frame    int64
	Time     time.Time
	Name     string
	Position int
	Args     *condition.EventArgs
}

// Engine is the single-writer tick driver.
//
// One call to Tick performs exactly one pass: advance the frame counter,
// read the time and focus, refresh every device adapter, apply deferred
// registry mutations, then evaluate each tracked condition in registry
// order and notify the subscribers of those that fired.
//
// Thread-safety model:
//   - Defer(): safe from any goroutine
//   - Tick(), Run(), Track(), TrackAt(), Untrack(): tick goroutine only
//   - Adapter staging (Set, Press, Pulse): safe from any goroutine
//
// INVARIANTS:
//   - frame numbers are strictly increasing, starting at 1
//   - every condition in a pass sees the same Frame value
//   - at most one event is dispatched per condition per tick
type Engine struct {
	hub      *device.Hub
	registry *tracked.Registry
	clock    *Clock
	time     TimeSource
	focus    FocusSource
	ids      IDGenerator
	deferred *mutationQueue
	budget   *FireBudget
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeSource sets the source of tick timestamps. Default: SystemTime.
func WithTimeSource(ts TimeSource) Option {
	return func(e *Engine) {
		e.time = ts
	}
}

// WithFocus sets the window focus source. Default: AlwaysFocused.
func WithFocus(f FocusSource) Option {
	return func(e *Engine) {
		e.focus = f
	}
}

// WithIDGenerator sets the event ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the frame clock, e.g. to resume numbering.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithMaxFiresPerTick bounds the number of events dispatched per tick.
// Zero is unlimited.
func WithMaxFiresPerTick(n int) Option {
	return func(e *Engine) {
		e.budget = NewFireBudget(n)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over hub with an empty registry.
func New(hub *device.Hub, opts ...Option) *Engine {
	e := &Engine{
		hub:      hub,
		registry: tracked.NewRegistry(),
		clock:    NewClock(),
		time:     SystemTime{},
		focus:    AlwaysFocused{},
		ids:      UUIDv7Generator{},
		deferred: newMutationQueue(),
		budget:   NewFireBudget(0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hub returns the device hub the engine refreshes.
func (e *Engine) Hub() *device.Hub {
	return e.hub
}

// Registry returns the tracked-condition registry.
func (e *Engine) Registry() *tracked.Registry {
	return e.registry
}

// Clock returns the frame clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Track appends c to the registry under name.
func (e *Engine) Track(name string, c condition.Condition) (int, error) {
	return e.registry.Insert(name, c)
}

// TrackAt inserts c at pos. Lower positions are evaluated first and win
// consumption races.
func (e *Engine) TrackAt(pos int, name string, c condition.Condition) (int, error) {
	return e.registry.InsertAt(pos, name, c)
}

// Untrack removes the named condition.
func (e *Engine) Untrack(name string) (tracked.Entry, error) {
	return e.registry.RemoveByName(name)
}

// Defer queues a registry mutation to run at the start of the next tick,
// before the pass. Fire handlers must use Defer rather than Track or
// Untrack.
func (e *Engine) Defer(m Mutation) {
	e.deferred.Enqueue(m)
}

// Tick performs one pass and returns the events dispatched, in registry
// order.
//
// A *RuntimeError is returned when the registry is modified during the pass
// or the fire budget is spent before the last condition. Firings dispatched
// before the error are still returned.
func (e *Engine) Tick() ([]Firing, error) {
	fr := condition.Frame{
		Number:       e.clock.Next(),
		Now:          e.time.Now(),
		WindowActive: e.focus.WindowActive(),
	}
	if e.hub != nil {
		e.hub.Refresh()
	}
	e.applyDeferred(fr.Number)
	e.budget.Reset()

	var firings []Firing
	err := e.registry.Each(func(entry tracked.Entry) error {
		if err := e.budget.Check(fr.Number, entry.Name); err != nil {
			var be *BudgetExceededError
			errors.As(err, &be)
			return newBudgetError(fr.Number, be)
		}

		s := entry.Condition.Settings()
		res := entry.Condition.Evaluate(fr, s.Consumable, s.AllowedIfConsumed)
		if !res.Fired() {
			return nil
		}
		e.budget.Record()

		res.Args.ID = e.ids.Generate()
		firings = append(firings, Firing{
			Frame:    fr.Number,
			Time:     fr.Now,
			Name:     entry.Name,
			Position: entry.Position,
			Args:     res.Args.Clone(),
		})
		e.logger.Debug("condition fired",
			"frame", fr.Number,
			"condition", entry.Name,
			"position", entry.Position,
			"id", res.Args.ID,
			"elapsed", res.Args.Elapsed,
		)

		condition.Notify(entry.Condition, res.Args)
		return nil
	})

	if err != nil {
		if tracked.IsConcurrentModification(err) {
			return firings, newConcurrentModificationError(fr.Number, err)
		}
		return firings, err
	}
	return firings, nil
}

// applyDeferred runs queued mutations in order. A failing mutation is
// logged and does not stop the others.
func (e *Engine) applyDeferred(frame int64) {
	for _, m := range e.deferred.Drain() {
		if err := m(e.registry); err != nil {
			e.logger.Warn("deferred registry mutation failed",
				"frame", frame,
				"error", err,
			)
		}
	}
}

// Run ticks every interval until ctx is cancelled.
//
// Budget errors are logged and the loop continues. A concurrent
// modification error is a usage bug and stops the loop.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}

	e.logger.Info("engine starting", "interval", interval, "tracked", e.registry.Len())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled", "frame", e.clock.Current())
			return ctx.Err()

		case <-ticker.C:
			if _, err := e.Tick(); err != nil {
				if IsBudgetError(err) {
					e.logger.Warn("fire budget exceeded", "error", err)
					continue
				}
				e.logger.Error("tick failed", "error", err)
				return err
			}
		}
	}
}
