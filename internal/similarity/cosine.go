// Package similarity scores pairs of embedding vectors.
package similarity

import "math"

// Cosine returns the cosine similarity of two vectors, clamped to [0, 1].
// Mismatched lengths, empty vectors, and zero-magnitude vectors all score 0.
// Negative raw similarity is treated as "no match" rather than surfaced,
// because callers interpret the value as a relevance score.
func Cosine(a, b []float64) float64 {
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

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
