package search

import (
	"math"
	"sort"
)

// TopK ranks items by cosine similarity to the query vector and returns at
// most k results, highest score first. Items with a nil vector are
// excluded. Ties keep input order (stable sort). k <= 0 yields an empty
// result; k beyond the number of scorable items yields all of them.
func TopK(query []float32, items []Item, k int) []Scored {
	if k <= 0 {
		return nil
	}

	scored := make([]Scored, 0, len(items))
	for _, it := range items {
		if it.Vector == nil {
			continue
		}
		scored = append(scored, Scored{
			Event: it.Event,
			Score: CosineSimilarity(query, it.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// CosineSimilarity computes dot(a,b) / (|a|·|b|). A zero norm on either
// side yields 0 rather than NaN, so degenerate vectors rank last instead
// of poisoning the sort. Mismatched lengths compare over the shorter
// prefix.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
