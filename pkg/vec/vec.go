// Package vec provides the small amount of vector math the engine needs:
// cosine similarity over fixed-dimension embeddings and element-wise means
// for building intent prototypes.
package vec

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Mismatched or empty vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Mean returns the element-wise mean of the given vectors. Vectors whose
// dimension differs from the first are skipped.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	count := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i := range v {
			sum[i] += float64(v[i])
		}
		count++
	}
	if count == 0 {
		return nil
	}

	mean := make([]float32, dim)
	for i := range sum {
		mean[i] = float32(sum[i] / float64(count))
	}
	return mean
}

// Normalize returns v scaled to unit length, or nil for a zero vector.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
