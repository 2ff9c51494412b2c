package domain

import "context"

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// Passage is one unit of searchable text. Index is its position in the
// corpus at the time it was indexed.
type Passage struct {
	Index int
	Text  string
}

// Match is a passage paired with its similarity to a query, in [0,1].
type Match struct {
	Passage Passage
	Score   float64
}

// Index turns a corpus into vectors and projects queries into the same space.
// Build fits the index to exactly the given corpus; Project must not re-fit.
type Index interface {
	Name() string
	Build(ctx context.Context, corpus []string) ([][]float64, error)
	Project(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// IndexFactory returns a fresh, unbuilt Index.
type IndexFactory func() Index

// Source extracts raw text segments from a target such as a URL or a path.
type Source interface {
	Name() string
	Accepts(target string) bool
	Extract(ctx context.Context, target string) ([]string, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
