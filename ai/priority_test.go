package ai

import (
	"testing"

	"cmfs/models"

	"github.com/stretchr/testify/assert"
)

func TestScorePriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Priority
	}{
		{"urgent keyword", "URGENT: ceiling collapsed in lab", models.PriorityUrgent},
		{"high keyword", "serious plumbing problem in hostel", models.PriorityHigh},
		{"low keyword", "minor suggestion about the canteen menu", models.PriorityLow},
		{"no keyword", "the projector in room 204 flickers", models.PriorityMedium},
		{"case insensitive", "EMERGENCY in the chemistry wing", models.PriorityUrgent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScorePriority(tt.text))
		})
	}
}

func TestScorePriority_UrgentBeatsOtherTiers(t *testing.T) {
	// A text matching several tiers resolves to the highest one.
	assert.Equal(t, models.PriorityUrgent, ScorePriority("minor issue but also assault reported"))
}
