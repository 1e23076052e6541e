package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualTime_DefaultsToEpoch(t *testing.T) {
	m := NewManualTime(time.Time{})
	assert.Equal(t, Epoch, m.Now())
	assert.Equal(t, time.Duration(0), m.Offset())
}

func TestManualTime_Advance(t *testing.T) {
	m := NewManualTime(Epoch)

	assert.Equal(t, Epoch.Add(16*time.Millisecond), m.Advance(16*time.Millisecond))
	assert.Equal(t, Epoch.Add(16*time.Millisecond), m.Advance(-time.Second), "time never goes backwards")
	assert.Equal(t, 16*time.Millisecond, m.Offset())
}

func TestManualTime_SetOffset(t *testing.T) {
	m := NewManualTime(Epoch)

	m.SetOffset(200 * time.Millisecond)
	assert.Equal(t, Epoch.Add(200*time.Millisecond), m.Now())

	m.SetOffset(100 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, m.Offset(), "earlier offsets are ignored")
}

func TestManualTime_Reset(t *testing.T) {
	start := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManualTime(start)
	m.Advance(time.Hour)

	m.Reset()
	assert.Equal(t, start, m.Now())
}
