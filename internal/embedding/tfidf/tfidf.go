package tfidf

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"sitechat/internal/domain"
)

// Options tunes tokenization. The zero value keeps every token of at least
// DefaultMinTokenLength runes and filters no stopwords.
type Options struct {
	Stopwords      map[string]struct{}
	MinTokenLength int
}

// DefaultMinTokenLength drops single-character tokens.
const DefaultMinTokenLength = 2

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Index is a TF-IDF vectorizer fit to one corpus.
// Weights are raw term counts times smoothed IDF, L2 normalized.
type Index struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
	built      bool
	stopwords  map[string]struct{}
	minLen     int
}

// New creates an unbuilt TF-IDF index.
func New(opts Options) *Index {
	minLen := opts.MinTokenLength
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}
	return &Index{
		vocabulary: make(map[string]int),
		stopwords:  opts.Stopwords,
		minLen:     minLen,
	}
}

// Name returns the identifier of this index implementation.
func (x *Index) Name() string { return "tfidf" }

// Build fits vocabulary and IDF values to the corpus and returns one vector
// per corpus entry. A corpus without any usable token yields zero-length vectors.
func (x *Index) Build(_ context.Context, corpus []string) ([][]float64, error) {
	if len(corpus) == 0 {
		return nil, domain.ErrEmptyInput
	}
	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		docs[i] = x.tokenize(text)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	x.vocabulary = make(map[string]int, len(terms))
	x.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		x.vocabulary[term] = i
		x.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	x.dimension = len(terms)
	x.built = true

	vectors := make([][]float64, len(docs))
	for i, tokens := range docs {
		vectors[i] = x.vectorize(tokens)
	}
	return vectors, nil
}

// Dimension returns the vocabulary size of the last build.
func (x *Index) Dimension() int { return x.dimension }

// Vocabulary returns the frozen terms in dimension order.
func (x *Index) Vocabulary() []string {
	terms := make([]string, len(x.vocabulary))
	for term, i := range x.vocabulary {
		terms[i] = term
	}
	return terms
}

// Project maps text into the frozen vocabulary space. Unknown terms are ignored.
func (x *Index) Project(_ context.Context, text string) ([]float64, error) {
	if !x.built {
		return nil, domain.ErrIndexNotReady
	}
	return x.vectorize(x.tokenize(text)), nil
}

func (x *Index) vectorize(tokens []string) []float64 {
	vec := make([]float64, x.dimension)
	tf := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := x.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) * x.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func (x *Index) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if utf8.RuneCountInString(t) < x.minLen {
			continue
		}
		if _, isStop := x.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// EnglishStopwords returns a small English stopword set.
func EnglishStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
