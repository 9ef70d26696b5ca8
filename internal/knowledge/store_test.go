package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(t.TempDir(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreReplaceAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		{Source: "a.txt", Seq: 0, Text: "cats purr"},
		{Source: "a.txt", Seq: 1, Text: "dogs bark"},
		{Source: "b.txt", Seq: 0, Text: "fish swim"},
	}
	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	require.NoError(t, s.Replace(ctx, chunks, vectors))

	results, err := s.Search(ctx, []float64{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cats purr", results[0].Chunk.Text)
	assert.Equal(t, "dogs bark", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStoreReplaceDropsPreviousUpload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []Chunk{{Source: "old.txt", Seq: 0, Text: "old content"}}
	require.NoError(t, s.Replace(ctx, first, [][]float64{{1, 0}}))

	second := []Chunk{{Source: "new.txt", Seq: 0, Text: "new content"}}
	require.NoError(t, s.Replace(ctx, second, [][]float64{{0, 1}}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := s.Search(ctx, []float64{1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new.txt", results[0].Chunk.Source)
}

func TestStoreReplaceLengthMismatch(t *testing.T) {
	s := openTestStore(t)
	err := s.Replace(context.Background(), []Chunk{{Text: "x"}}, nil)
	assert.Error(t, err)
}

func TestStoreSearchEmptyCollection(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search(context.Background(), []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCosineSimilarity(t *testing.T) {
	tests := map[string]struct {
		a, b   []float64
		want   float64
		wantOK bool
	}{
		"identical":       {[]float64{1, 2, 3}, []float64{1, 2, 3}, 1.0, true},
		"opposite":        {[]float64{1, 2, 3}, []float64{-1, -2, -3}, -1.0, true},
		"orthogonal":      {[]float64{1, 0}, []float64{0, 1}, 0.0, true},
		"scaled":          {[]float64{1, 2, 3}, []float64{2, 4, 6}, 1.0, true},
		"empty-first":     {nil, []float64{1}, 0, false},
		"length-mismatch": {[]float64{1, 2}, []float64{1, 2, 3}, 0, false},
		"zero-vector":     {[]float64{0, 0}, []float64{1, 2}, 0, false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := CosineSimilarity(tc.a, tc.b)
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestVectorRoundTrip(t *testing.T) {
	v := []float64{0.25, -1.5, 3.14159, 0}
	assert.Equal(t, v, decodeVector(encodeVector(v)))
}
