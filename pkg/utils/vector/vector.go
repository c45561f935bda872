package vector

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine similarity of a and b.
// Vectors of different length or zero norm have similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}

// Scored pairs an item with its similarity score
type Scored[T any] struct {
	Item  T
	Score float64
}

// TopK scores every item against query and returns at most k items, highest score first.
// Items whose embedding is empty are skipped. The sort is stable so equal scores keep input order.
func TopK[T any](query []float32, items []T, embedding func(T) []float32, k int) []Scored[T] {
	candidates := make([]Scored[T], 0, len(items))
	for _, item := range items {
		emb := embedding(item)
		if len(emb) == 0 {
			continue
		}
		candidates = append(candidates, Scored[T]{Item: item, Score: CosineSimilarity(query, emb)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if k < 0 {
		k = 0
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}
