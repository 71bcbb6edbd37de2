package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 1}, []float64{-1, -1}), 1e-9)
}

func TestCosineSimilarity_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 2}))
}

func TestSoftmax_SumsToOneAndPreservesOrder(t *testing.T) {
	scores := []float64{0.9, 0.1, 0.5}
	probs := Softmax(scores)
	require.Len(t, probs, 3)

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[2])
	assert.Greater(t, probs[2], probs[1])
}

func TestSoftmax_LargeScoresStable(t *testing.T) {
	// Without max subtraction these would overflow to +Inf.
	probs := Softmax([]float64{1000, 999})
	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[1])
}

func TestSoftmax_Empty(t *testing.T) {
	assert.Nil(t, Softmax(nil))
}

func TestConfidence(t *testing.T) {
	// 0.7*0.8 + 0.3*(0.6-0.3) = 0.65
	assert.InDelta(t, 0.65, Confidence(0.8, []float64{0.6, 0.3, 0.1}), 1e-9)
}

func TestConfidence_ClampedToOne(t *testing.T) {
	assert.Equal(t, 1.0, Confidence(1.4, []float64{0.9, 0.1}))
}

func TestDynamicThreshold_Base(t *testing.T) {
	// Close race, neutral confidence: base stays at 0.25.
	assert.InDelta(t, 0.25, DynamicThreshold(0.40, 0.35, 0.5, 5), 1e-9)
}

func TestDynamicThreshold_ClearWinner(t *testing.T) {
	// Gap above 0.15 drops the base to 0.20.
	assert.InDelta(t, 0.20, DynamicThreshold(0.60, 0.30, 0.5, 5), 1e-9)
}

func TestDynamicThreshold_ConfidenceAdjustment(t *testing.T) {
	// High confidence raises the threshold by (0.9-0.5)*0.05.
	assert.InDelta(t, 0.27, DynamicThreshold(0.40, 0.35, 0.9, 5), 1e-9)
	// Low confidence lowers it.
	assert.InDelta(t, 0.23, DynamicThreshold(0.40, 0.35, 0.1, 5), 1e-9)
}

func TestDynamicThreshold_Floor(t *testing.T) {
	// Clear winner with zero confidence: 0.20 - 0.025 = 0.175, above floor.
	assert.InDelta(t, 0.175, DynamicThreshold(0.60, 0.30, 0.0, 5), 1e-9)
	// The floor holds no matter how the inputs combine.
	assert.GreaterOrEqual(t, DynamicThreshold(0.60, 0.30, -10.0, 5), 0.15)
}

func TestDynamicThreshold_SingleCandidateIgnoresGap(t *testing.T) {
	// One candidate can never be a "clear winner" over itself.
	assert.InDelta(t, 0.25, DynamicThreshold(0.90, 0.0, 0.5, 1), 1e-9)
}
