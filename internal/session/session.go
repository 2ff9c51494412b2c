package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"sitechat/internal/domain"
	"sitechat/internal/logging"
	"sitechat/internal/passage"
	"sitechat/internal/ranker"
)

const (
	// NoContentMessage is returned by Answer before anything was indexed.
	NoContentMessage = "I don't have any content to work with. Please load a document first."
	// NoMatchMessage is returned when no passage is relevant enough.
	NoMatchMessage = "I'm sorry, I couldn't find relevant information to answer your question."

	answerHeader = "Based on the document content:"
)

// State is the lifecycle state of a Session.
type State int

const (
	Empty State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "empty"
}

// Config holds the tunables of a Session. Zero values select defaults.
type Config struct {
	MinPassageLength int
	TopK             int
	Threshold        float64
}

// snapshot is the immutable corpus + index pair served to queries.
type snapshot struct {
	id      string
	store   *passage.Store
	index   domain.Index
	vectors [][]float64
}

// Session answers questions over the most recently indexed document.
// Index replaces the whole snapshot at once; readers never see a partial one.
type Session struct {
	mu       sync.RWMutex
	current  *snapshot
	newIndex domain.IndexFactory
	minLen   int
	ranker   ranker.Ranker
	logger   *log.Logger
}

// New creates an empty session. A nil logger discards output.
func New(cfg Config, newIndex domain.IndexFactory, logger *log.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		newIndex: newIndex,
		minLen:   cfg.MinPassageLength,
		ranker:   ranker.New(cfg.TopK, cfg.Threshold),
		logger:   logger,
	}
}

// State reports whether a corpus is loaded.
func (s *Session) State() State {
	if s.snapshot() == nil {
		return Empty
	}
	return Ready
}

// Len returns the number of passages currently indexed.
func (s *Session) Len() int {
	snap := s.snapshot()
	if snap == nil {
		return 0
	}
	return snap.store.Len()
}

// Passages returns the passages currently indexed.
func (s *Session) Passages() []domain.Passage {
	snap := s.snapshot()
	if snap == nil {
		return nil
	}
	return snap.store.Passages()
}

// Index filters raw segments into passages, builds a fresh index over them
// and installs both. It returns the passage count; zero empties the session.
// On error the previous snapshot stays in place.
func (s *Session) Index(ctx context.Context, raw []string) (int, error) {
	start := time.Now()
	store := passage.NewStore(s.minLen)
	count := store.Load(raw)
	if count == 0 {
		s.install(nil)
		s.logger.Info().Int("raw_segments", len(raw)).Msg("no passages after filtering, session emptied")
		return 0, nil
	}

	index := s.newIndex()
	vectors, err := index.Build(ctx, store.Texts())
	if err != nil {
		return 0, fmt.Errorf("build %s index: %w", index.Name(), err)
	}
	if len(vectors) != count {
		return 0, fmt.Errorf("%s index returned %d vectors for %d passages: %w", index.Name(), len(vectors), count, domain.ErrDimensionMismatch)
	}

	snap := &snapshot{id: uuid.NewString(), store: store, index: index, vectors: vectors}
	s.install(snap)
	s.logger.Info().
		Str("snapshot", snap.id).
		Str("index", index.Name()).
		Int("raw_segments", len(raw)).
		Int("passages", count).
		Int("dimension", index.Dimension()).
		Dur("took", time.Since(start)).
		Msg("document indexed")
	return count, nil
}

// Search ranks the current passages against query. ok is false when the
// best score is below the threshold. Searching an empty session reports
// domain.ErrIndexNotReady.
func (s *Session) Search(ctx context.Context, query string) (matches []domain.Match, ok bool, err error) {
	snap := s.snapshot()
	if snap == nil {
		return nil, false, domain.ErrIndexNotReady
	}
	return s.search(ctx, snap, query)
}

// Answer returns a display-ready response for query. Empty sessions and
// irrelevant queries produce fixed messages rather than errors.
func (s *Session) Answer(ctx context.Context, query string) (string, error) {
	snap := s.snapshot()
	if snap == nil {
		return NoContentMessage, nil
	}
	matches, ok, err := s.search(ctx, snap, query)
	if err != nil {
		return "", err
	}
	if !ok {
		return NoMatchMessage, nil
	}
	return FormatMatches(matches), nil
}

func (s *Session) search(ctx context.Context, snap *snapshot, query string) ([]domain.Match, bool, error) {
	qv, err := snap.index.Project(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("project query: %w", err)
	}
	res, err := s.ranker.Rank(qv, snap.vectors)
	if err != nil {
		return nil, false, err
	}
	s.logger.Debug().
		Str("snapshot", snap.id).
		Float64("best", res.Best).
		Bool("no_match", res.NoMatch).
		Int("matches", len(res.Matches)).
		Msg("query ranked")
	if res.NoMatch {
		return nil, false, nil
	}
	matches := make([]domain.Match, len(res.Matches))
	for i, m := range res.Matches {
		matches[i] = domain.Match{Passage: snap.store.Passage(m.Index), Score: m.Score}
	}
	return matches, true, nil
}

// FormatMatches renders matches in ranked order with their relevance as a
// percentage.
func FormatMatches(matches []domain.Match) string {
	var b strings.Builder
	b.WriteString(answerHeader)
	for _, m := range matches {
		fmt.Fprintf(&b, "\n\n• %s\n(Relevance: %.1f%%)", m.Passage.Text, m.Score*100)
	}
	return b.String()
}

func (s *Session) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Session) install(snap *snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}
