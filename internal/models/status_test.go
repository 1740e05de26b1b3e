package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Known(t *testing.T) {
	assert.True(t, StatusPending.Known())
	assert.True(t, StatusInProgress.Known())
	assert.True(t, StatusCompleted.Known())
	assert.True(t, StatusCancelled.Known())
	assert.False(t, Status("ARCHIVED").Known())
	assert.False(t, Status("").Known())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to in_progress", StatusPending, StatusInProgress, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"in_progress to cancelled", StatusInProgress, StatusCancelled, true},
		{"completed reopen", StatusCompleted, StatusInProgress, true},
		{"cancelled reopen", StatusCancelled, StatusPending, true},
		{"same status is idempotent", StatusPending, StatusPending, true},
		{"no backward completed to pending", StatusCompleted, StatusPending, false},
		{"no skip pending to completed", StatusPending, StatusCompleted, false},
		{"no completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"unknown source", Status("ARCHIVED"), StatusPending, false},
		{"unknown target", StatusPending, Status("ARCHIVED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestFurtherAlong(t *testing.T) {
	tests := []struct {
		name     string
		a        Status
		b        Status
		expected Status
		ok       bool
	}{
		{"completed further than in_progress", StatusInProgress, StatusCompleted, StatusCompleted, true},
		{"order independent", StatusCompleted, StatusInProgress, StatusCompleted, true},
		{"in_progress further than pending", StatusPending, StatusInProgress, StatusInProgress, true},
		{"equal statuses", StatusCompleted, StatusCompleted, StatusCompleted, true},
		{"equal cancelled", StatusCancelled, StatusCancelled, StatusCancelled, true},
		{"cancelled vs completed incomparable", StatusCancelled, StatusCompleted, "", false},
		{"cancelled vs in_progress incomparable", StatusInProgress, StatusCancelled, "", false},
		{"unknown status incomparable", Status("ARCHIVED"), StatusPending, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FurtherAlong(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
