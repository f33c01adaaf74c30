package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		current     []string
		desired     []string
		wantAdded   []string
		wantRemoved []string
	}{
		{
			name:      "first tags on an untagged topic",
			desired:   []string{"linux", "networking"},
			wantAdded: []string{"linux", "networking"},
		},
		{
			name:        "clear all tags",
			current:     []string{"linux", "networking"},
			wantRemoved: []string{"linux", "networking"},
		},
		{
			name:    "identical sets touch nothing",
			current: []string{"linux", "networking"},
			desired: []string{"networking", "linux"},
		},
		{
			name:        "partial overlap",
			current:     []string{"linux", "audio", "networking"},
			desired:     []string{"linux", "bluetooth"},
			wantAdded:   []string{"bluetooth"},
			wantRemoved: []string{"audio", "networking"},
		},
		{
			name:      "duplicates in desired collapse",
			desired:   []string{"linux", "linux"},
			wantAdded: []string{"linux"},
		},
		{
			name: "both empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			added, removed := tagDiff(tt.current, tt.desired)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}
