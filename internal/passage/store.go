package passage

import (
	"strings"
	"unicode/utf8"

	"sitechat/internal/domain"
)

// DefaultMinLength is the length a segment must exceed to count as a passage.
const DefaultMinLength = 20

// Store holds the ordered passages of the currently loaded document.
// Load replaces its contents wholesale.
type Store struct {
	minLength int
	passages  []domain.Passage
}

// NewStore creates an empty store. A non-positive minLength selects DefaultMinLength.
func NewStore(minLength int) *Store {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Store{minLength: minLength}
}

// Load keeps every trimmed segment longer than the minimum length and returns
// how many were stored. Zero is a valid result meaning nothing to search.
func (s *Store) Load(raw []string) int {
	passages := make([]domain.Passage, 0, len(raw))
	for _, text := range raw {
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) <= s.minLength {
			continue
		}
		passages = append(passages, domain.Passage{Index: len(passages), Text: text})
	}
	s.passages = passages
	return len(passages)
}

// Len returns the number of stored passages.
func (s *Store) Len() int { return len(s.passages) }

// Passage returns the passage at position i.
func (s *Store) Passage(i int) domain.Passage { return s.passages[i] }

// Passages returns a copy of the stored passages in order.
func (s *Store) Passages() []domain.Passage {
	out := make([]domain.Passage, len(s.passages))
	copy(out, s.passages)
	return out
}

// Texts returns the passage texts in order.
func (s *Store) Texts() []string {
	out := make([]string, len(s.passages))
	for i, p := range s.passages {
		out[i] = p.Text
	}
	return out
}
