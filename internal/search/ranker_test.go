package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iventshq/ivents/internal/model"
)

func item(title string, vec []float32) Item {
	return Item{Event: model.Event{Title: title}, Vector: vec}
}

func TestTopKRanking(t *testing.T) {
	query := []float32{1, 0}
	items := []Item{
		item("identical", []float32{1, 0}),
		item("orthogonal", []float32{0, 1}),
		item("unscorable", nil),
	}

	got := TopK(query, items, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "identical", got[0].Event.Title)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.Equal(t, "orthogonal", got[1].Event.Title)
	assert.InDelta(t, 0.0, got[1].Score, 1e-9)
}

func TestTopKExcludesAbsentVectors(t *testing.T) {
	got := TopK([]float32{1, 0}, []Item{item("no vector", nil)}, 5)
	assert.Empty(t, got)
}

func TestTopKZeroK(t *testing.T) {
	items := []Item{item("a", []float32{1, 0})}
	assert.Empty(t, TopK([]float32{1, 0}, items, 0))
	assert.Empty(t, TopK([]float32{1, 0}, items, -3))
}

func TestTopKFewerItemsThanK(t *testing.T) {
	items := []Item{
		item("a", []float32{1, 0}),
		item("b", []float32{0.5, 0.5}),
	}
	got := TopK([]float32{1, 0}, items, 20)
	assert.Len(t, got, 2, "k beyond the scorable count returns everything ranked")
}

func TestTopKStableTies(t *testing.T) {
	v := []float32{1, 0}
	items := []Item{
		item("first", v),
		item("second", v),
		item("third", v),
	}

	got := TopK(v, items, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Event.Title)
	assert.Equal(t, "second", got[1].Event.Title)
	assert.Equal(t, "third", got[2].Event.Title)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero norm left", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"zero norm right", []float32{1, 1}, []float32{0, 0}, 0.0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
