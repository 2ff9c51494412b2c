package file

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phuslu/log"

	"sitechat/internal/domain"
	"sitechat/internal/logging"
)

// ErrNoDocuments is returned when a target matches no readable text file.
var ErrNoDocuments = errors.New("no .txt or .md documents found")

var textExtensions = map[string]struct{}{".txt": {}, ".md": {}}

// Source reads local text files and splits them into passages.
type Source struct {
	chunker domain.Chunker
	logger  *log.Logger
}

// NewSource creates a file source that chunks documents with chunker.
func NewSource(chunker domain.Chunker, logger *log.Logger) *Source {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Source{chunker: chunker, logger: logger}
}

// Name returns the identifier of this source.
func (s *Source) Name() string { return "file" }

// Accepts reports whether target is not a URL. Paths and globs are resolved
// during Extract.
func (s *Source) Accepts(target string) bool {
	return !strings.Contains(target, "://")
}

// Extract resolves target as a comma separated list of paths or globs and
// returns the chunks of every matching document in path order.
func (s *Source) Extract(ctx context.Context, target string) ([]string, error) {
	paths, err := resolve(target)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, target)
	}
	var segments []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		chunks, err := s.chunker.Chunk(domain.Document{ID: hashString(p), Path: p, Content: string(data)})
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", p, err)
		}
		for _, ch := range chunks {
			segments = append(segments, ch.Text)
		}
		s.logger.Debug().Str("path", p).Int("chunks", len(chunks)).Msg("document chunked")
	}
	s.logger.Info().Int("documents", len(paths)).Int("segments", len(segments)).Msg("files read")
	return segments, nil
}

func resolve(target string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range strings.Split(target, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if matches == nil {
			matches = []string{pattern}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, err
			}
			if info.IsDir() {
				continue
			}
			if _, ok := textExtensions[strings.ToLower(filepath.Ext(m))]; !ok {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
