package condition

import (
	"maps"
	"time"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// EventArgs is the snapshot delivered when a condition fires.
//
// Combinators embed independent clones of their children's arguments, so a
// later fire, consumption or mutation elsewhere cannot alter an event that
// was already raised. The Condition field is a reference and is shared by
// clones; everything else is owned by the EventArgs value.
type EventArgs struct {
	// ID is assigned by the tick driver before dispatch.
	ID string

	Source    device.Source
	Condition Condition

	// Signal and the samples are empty for combinators.
	Signal   device.Signal
	Value    value.Value
	Previous value.Value

	Frame          int64
	StateEnteredAt time.Time
	Elapsed        time.Duration
	WindowActive   bool
	MinDwell       time.Duration

	// Details carries device-specific payload (edge kind, comparator,
	// gesture id) as display strings.
	Details map[string]string

	// Children holds the contributing children's arguments, in child
	// order, for All conditions.
	Children []*EventArgs
}

// Clone returns a deep copy that shares nothing mutable with a.
func (a *EventArgs) Clone() *EventArgs {
	if a == nil {
		return nil
	}
	out := *a
	out.Details = maps.Clone(a.Details)
	if a.Children != nil {
		out.Children = make([]*EventArgs, len(a.Children))
		for i, c := range a.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Detail returns a payload field, or "" when absent.
func (a *EventArgs) Detail(key string) string {
	if a == nil {
		return ""
	}
	return a.Details[key]
}

func (a *EventArgs) setDetail(key, val string) {
	if a.Details == nil {
		a.Details = make(map[string]string)
	}
	a.Details[key] = val
}
