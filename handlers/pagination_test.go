package handlers

import (
	"math"
	"testing"

	"activitylog/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"use provided limit", 10, 10},
		{"use default when zero", 0, 50},
		{"use default when negative", -10, 50},
		{"cap at max", 5000, 1000},
		{"exactly at max", 1000, 1000},
		{"one below max", 999, 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validateLimit(tt.limit, defaultLimit, maxLimit))
		})
	}
}

func TestValidateOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		expected int
	}{
		{"zero", 0, 0},
		{"positive", 25, 25},
		{"negative clamps to zero", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validateOffset(tt.offset))
		})
	}
}

func TestWindow(t *testing.T) {
	events := make([]models.LogEvent, 5)
	for i := range events {
		events[i].ID = string(rune('a' + i))
	}

	assert.Len(t, window(events, 0, 2), 2)
	assert.Equal(t, "d", window(events, 3, 10)[0].ID)
	assert.Len(t, window(events, 3, 10), 2)
	assert.Empty(t, window(events, 5, 10))
	assert.NotNil(t, window(nil, 0, 10))
	assert.Empty(t, window(events, math.MaxInt, maxLimit))
}
