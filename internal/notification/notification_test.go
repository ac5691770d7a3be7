package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMilestone(t *testing.T) {
	m, ok := IsMilestone(6, 7)
	assert.True(t, ok)
	assert.Equal(t, 7, m)

	// Jumping over a milestone (replay) still reports it.
	m, ok = IsMilestone(25, 31)
	assert.True(t, ok)
	assert.Equal(t, 30, m)

	// Already past it.
	_, ok = IsMilestone(7, 8)
	assert.False(t, ok)

	_, ok = IsMilestone(1, 2)
	assert.False(t, ok)
}
