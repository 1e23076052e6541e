package device

import "fmt"

// Source identifies a device family.
type Source int

const (
	// SourceNone marks conditions that are not tied to one family, such as
	// combinators mixing keyboard and gamepad children.
	SourceNone Source = iota
	Keyboard
	Mouse
	Gamepad
	Touch
	Voice
)

var sourceNames = []string{
	SourceNone: "none",
	Keyboard:   "keyboard",
	Mouse:      "mouse",
	Gamepad:    "gamepad",
	Touch:      "touch",
	Voice:      "voice",
}

// AllSources lists every device family in refresh order.
var AllSources = []Source{Keyboard, Mouse, Gamepad, Touch, Voice}

func (s Source) String() string {
	if int(s) >= 0 && int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// ParseSource parses a lower-case family name.
func ParseSource(name string) (Source, error) {
	for i, n := range sourceNames {
		if n == name {
			return Source(i), nil
		}
	}
	return SourceNone, fmt.Errorf("unknown device source %q", name)
}

// Signal names one input on a device: a key ("Space"), a button
// ("LeftShoulder"), an axis ("LeftTrigger"), a gesture id ("Tap") or a
// recognised phrase ("open map").
type Signal string
