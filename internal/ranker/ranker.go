package ranker

import (
	"fmt"
	"math"
	"sort"

	"sitechat/internal/domain"
)

const (
	// DefaultTopK is the number of matches returned when none is configured.
	DefaultTopK = 3
	// DefaultThreshold is the minimum best score for a result to count as relevant.
	DefaultThreshold = 0.3
)

// Scored is a passage position with its similarity to the query.
type Scored struct {
	Index int
	Score float64
}

// Result is the outcome of ranking one query. When NoMatch is set the best
// score fell below the threshold and Matches is empty.
type Result struct {
	Matches []Scored
	NoMatch bool
	Best    float64
}

// Ranker scores passage vectors against a query vector.
type Ranker struct {
	TopK      int
	Threshold float64
}

// New returns a Ranker, substituting defaults for a non-positive topK or
// threshold.
func New(topK int, threshold float64) Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Ranker{TopK: topK, Threshold: threshold}
}

// Rank computes cosine similarity between query and every vector, sorts
// descending with earlier positions winning ties, and keeps at most TopK.
// It has no side effects.
func (r Ranker) Rank(query []float64, vectors [][]float64) (Result, error) {
	scores, err := Similarities(query, vectors)
	if err != nil {
		return Result{}, err
	}
	order := argsortDesc(scores)
	if len(order) == 0 || scores[order[0]] < r.Threshold {
		best := 0.0
		if len(order) > 0 {
			best = scores[order[0]]
		}
		return Result{NoMatch: true, Best: best}, nil
	}
	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > len(order) {
		topK = len(order)
	}
	matches := make([]Scored, topK)
	for i := 0; i < topK; i++ {
		matches[i] = Scored{Index: order[i], Score: scores[order[i]]}
	}
	return Result{Matches: matches, Best: matches[0].Score}, nil
}

// Similarities returns the cosine similarity of query against each vector,
// clamped to [0,1].
func Similarities(query []float64, vectors [][]float64) ([]float64, error) {
	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != len(query) {
			return nil, fmt.Errorf("passage %d has %d dimensions, query has %d: %w", i, len(v), len(query), domain.ErrDimensionMismatch)
		}
		scores[i] = Cosine(query, v)
	}
	return scores, nil
}

// Cosine returns the cosine similarity of two equal-length vectors clamped to
// [0,1]. A zero vector has similarity 0 with everything.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return vals[idxs[i]] > vals[idxs[j]] })
	return idxs
}
