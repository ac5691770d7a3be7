package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	assert.False(t, (&Task{Status: StatusPending}).IsOverdue(now), "no due date")
	assert.True(t, (&Task{Status: StatusPending, DueDate: &yesterday}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusPending, DueDate: &tomorrow}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusCompleted, DueDate: &yesterday}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusCancelled, DueDate: &yesterday}).IsOverdue(now))
}
