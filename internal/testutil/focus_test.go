package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualFocus(t *testing.T) {
	var zero ManualFocus
	assert.False(t, zero.WindowActive())

	f := NewManualFocus(true)
	assert.True(t, f.WindowActive())

	f.Set(false)
	assert.False(t, f.WindowActive())
}
