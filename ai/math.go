package ai

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Zero vectors or mismatched lengths yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Softmax converts scores to a probability distribution that sums to 1 and
// preserves the rank order of the inputs. The max is subtracted before
// exponentiating for numerical stability.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Confidence blends the top similarity with the separation between the two
// highest probabilities: 0.7*similarity + 0.3*(p1-p2), clamped to 1.
// It is used only to tune the acceptance threshold.
func Confidence(similarity float64, probabilities []float64) float64 {
	var first, second float64
	for _, p := range probabilities {
		if p > first {
			second = first
			first = p
		} else if p > second {
			second = p
		}
	}
	confidence := similarity*0.7 + (first-second)*0.3
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// Dynamic threshold constants. The base is intentionally permissive; a clear
// winner (similarity gap above clearWinnerGap) lowers it further.
const (
	baseThreshold    = 0.25
	clearWinnerBase  = 0.20
	clearWinnerGap   = 0.15
	minThreshold     = 0.15
	confidenceWeight = 0.05
)

// DynamicThreshold computes the acceptance threshold for the top candidate.
// topSim and secondSim are the two highest similarities (secondSim may equal
// topSim when only one category exists); confidence is the blended score for
// the top candidate.
func DynamicThreshold(topSim, secondSim, confidence float64, candidates int) float64 {
	threshold := baseThreshold
	if candidates >= 2 && topSim-secondSim > clearWinnerGap {
		threshold = clearWinnerBase
	}
	threshold += (confidence - 0.5) * confidenceWeight
	if threshold < minThreshold {
		threshold = minThreshold
	}
	return threshold
}
