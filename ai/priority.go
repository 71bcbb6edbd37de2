package ai

import (
	"strings"

	"cmfs/models"
)

// Priority keyword tiers, checked in precedence order: the first tier with
// any match wins. There is no weighting or counting.
var (
	urgentKeywords = []string{"urgent", "emergency", "critical", "immediate", "asap", "danger", "threat", "harassment", "assault"}
	highKeywords   = []string{"important", "serious", "significant", "major", "severe"}
	lowKeywords    = []string{"minor", "small", "suggestion", "feedback", "question"}
)

// ScorePriority maps complaint text to a priority level via keyword rules.
// Case-insensitive; no keyword match yields medium.
func ScorePriority(text string) models.Priority {
	lower := strings.ToLower(text)

	if containsAny(lower, urgentKeywords) {
		return models.PriorityUrgent
	}
	if containsAny(lower, highKeywords) {
		return models.PriorityHigh
	}
	if containsAny(lower, lowKeywords) {
		return models.PriorityLow
	}
	return models.PriorityMedium
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
