package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitechat/internal/domain"
)

func TestNewDefaults(t *testing.T) {
	r := New(0, -1)
	assert.Equal(t, DefaultTopK, r.TopK)
	assert.Equal(t, DefaultThreshold, r.Threshold)

	r = New(5, 0.1)
	assert.Equal(t, 5, r.TopK)
	assert.Equal(t, 0.1, r.Threshold)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, []float64{-1, 0}), "negative similarity clamps to zero")
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestRankOrdersDescending(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0},
		{0.6, 0.8, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	}
	res, err := New(3, 0.3).Rank([]float64{1, 0, 0}, vectors)
	require.NoError(t, err)
	require.False(t, res.NoMatch)
	require.Len(t, res.Matches, 3)

	assert.Equal(t, 0, res.Matches[0].Index)
	assert.Equal(t, 2, res.Matches[1].Index)
	assert.Equal(t, 1, res.Matches[2].Index)
	assert.InDelta(t, 1.0, res.Best, 1e-12)
	for i := 1; i < len(res.Matches); i++ {
		assert.GreaterOrEqual(t, res.Matches[i-1].Score, res.Matches[i].Score)
	}
}

func TestRankTieBreakByPosition(t *testing.T) {
	vectors := [][]float64{
		{0, 1},
		{1, 0},
		{0, 1},
		{1, 0},
	}
	res, err := New(4, 0.3).Rank([]float64{1, 0}, vectors)
	require.NoError(t, err)
	require.Len(t, res.Matches, 4)

	got := []int{res.Matches[0].Index, res.Matches[1].Index, res.Matches[2].Index, res.Matches[3].Index}
	assert.Equal(t, []int{1, 3, 0, 2}, got)
}

func TestRankTopKBound(t *testing.T) {
	vectors := [][]float64{{1, 0}, {1, 1}}
	for _, k := range []int{1, 2, 3, 10} {
		res, err := New(k, 0.3).Rank([]float64{1, 0}, vectors)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Matches), min(k, len(vectors)))
	}
	res, err := New(10, 0.3).Rank([]float64{1, 0}, vectors)
	require.NoError(t, err)
	assert.Len(t, res.Matches, 2)
}

func TestRankBelowThreshold(t *testing.T) {
	vectors := [][]float64{{0, 1, 0}, {0.2, 0.98, 0}, {0, 0, 1}}
	res, err := New(3, 0.3).Rank([]float64{1, 0, 0}, vectors)
	require.NoError(t, err)

	assert.True(t, res.NoMatch)
	assert.Empty(t, res.Matches)
	assert.Less(t, res.Best, 0.3)
}

func TestRankThresholdIsInclusive(t *testing.T) {
	res, err := New(1, 0.5).Rank([]float64{1, 0}, [][]float64{{1, 0}})
	require.NoError(t, err)
	assert.False(t, res.NoMatch)

	res, err = New(1, 1.0).Rank([]float64{1, 0}, [][]float64{{1, 0}})
	require.NoError(t, err)
	assert.False(t, res.NoMatch, "exact threshold is accepted")
}

func TestRankZeroQuery(t *testing.T) {
	res, err := New(3, 0.3).Rank([]float64{0, 0}, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.True(t, res.NoMatch)
}

func TestRankEmptyVectors(t *testing.T) {
	res, err := New(3, 0.3).Rank([]float64{1}, nil)
	require.NoError(t, err)
	assert.True(t, res.NoMatch)
}

func TestRankDimensionMismatch(t *testing.T) {
	_, err := New(3, 0.3).Rank([]float64{1, 0}, [][]float64{{1, 0}, {1, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRankDoesNotMutateInputs(t *testing.T) {
	query := []float64{1, 2}
	vectors := [][]float64{{2, 1}, {1, 2}}
	_, err := New(2, 0.3).Rank(query, vectors)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, query)
	assert.Equal(t, [][]float64{{2, 1}, {1, 2}}, vectors)
}
