package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"sitechat/internal/domain"
	"sitechat/internal/logging"
	"sitechat/internal/session"
)

// LoadReport describes a completed load.
type LoadReport struct {
	Target  string
	Source  string
	Count   int
	Summary string
	Took    time.Duration
}

// ChatService routes targets to sources and questions to the session.
type ChatService struct {
	sources             []domain.Source
	session             *session.Session
	summarizer          domain.Summarizer
	summaryMaxSentences int
	logger              *log.Logger
}

// NewChatService wires sources, the session and an optional summarizer.
// Sources are tried in order; the first that accepts a target handles it.
func NewChatService(sources []domain.Source, sess *session.Session, summarizer domain.Summarizer, summaryMaxSentences int, logger *log.Logger) *ChatService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ChatService{
		sources:             sources,
		session:             sess,
		summarizer:          summarizer,
		summaryMaxSentences: summaryMaxSentences,
		logger:              logger,
	}
}

// Load extracts target with the matching source and indexes the result.
// If extraction or indexing fails the session keeps its previous content.
func (s *ChatService) Load(ctx context.Context, target string) (LoadReport, error) {
	start := time.Now()
	target = strings.TrimSpace(target)
	if target == "" {
		return LoadReport{}, fmt.Errorf("load: %w", domain.ErrEmptyInput)
	}
	src := s.sourceFor(target)
	if src == nil {
		return LoadReport{}, fmt.Errorf("no source accepts %q", target)
	}

	segments, err := src.Extract(ctx, target)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", src.Name()).Str("target", target).Msg("extract failed")
		return LoadReport{}, fmt.Errorf("extract %s: %w", target, err)
	}
	count, err := s.session.Index(ctx, segments)
	if err != nil {
		s.logger.Error().Err(err).Str("target", target).Msg("index failed")
		return LoadReport{}, err
	}

	report := LoadReport{Target: target, Source: src.Name(), Count: count}
	if count > 0 && s.summarizer != nil {
		texts := make([]string, 0, count)
		for _, p := range s.session.Passages() {
			texts = append(texts, p.Text)
		}
		summary, err := s.summarizer.Summarize(strings.Join(texts, "\n"), s.summaryMaxSentences)
		if err != nil {
			s.logger.Warn().Err(err).Msg("summarize failed")
		} else {
			report.Summary = summary
		}
	}
	report.Took = time.Since(start)
	s.logger.Info().
		Str("target", target).
		Str("source", report.Source).
		Int("segments", len(segments)).
		Int("passages", count).
		Dur("took", report.Took).
		Msg("load complete")
	return report, nil
}

// Ask answers question against the currently loaded content.
func (s *ChatService) Ask(ctx context.Context, question string) (string, error) {
	return s.session.Answer(ctx, question)
}

func (s *ChatService) sourceFor(target string) domain.Source {
	for _, src := range s.sources {
		if src.Accepts(target) {
			return src
		}
	}
	return nil
}
