package cmd

import (
	"fmt"
	"time"

	"sitechat/internal/chunker"
	"sitechat/internal/config"
	"sitechat/internal/domain"
	"sitechat/internal/embedding/openai"
	"sitechat/internal/embedding/tfidf"
	"sitechat/internal/service"
	"sitechat/internal/session"
	"sitechat/internal/source/file"
	"sitechat/internal/source/web"
	"sitechat/internal/summarizer"
)

// newChatService assembles the sources, index, session and summarizer
// described by cfg.
func newChatService(cfg *config.AppConfig) (*service.ChatService, error) {
	newIndex, err := indexFactory(cfg.Index)
	if err != nil {
		return nil, err
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	scraper := web.NewScraper(web.Config{
		Timeout:   time.Duration(cfg.Scraper.TimeoutSecs) * time.Second,
		UserAgent: cfg.Scraper.UserAgent,
		Selector:  cfg.Scraper.Selector,
	}, nil, logger)
	files := file.NewSource(ch, logger)

	sess := session.New(session.Config{
		MinPassageLength: cfg.Passages.MinLength,
		TopK:             cfg.Ranker.TopK,
		Threshold:        cfg.Ranker.Threshold,
	}, newIndex, logger)

	return service.NewChatService([]domain.Source{scraper, files}, sess, sum, cfg.Summarizer.MaxSentences, logger), nil
}

func indexFactory(cfg config.IndexConfig) (domain.IndexFactory, error) {
	switch cfg.Type {
	case "tfidf", "":
		opts := tfidf.Options{MinTokenLength: cfg.MinTokenLength}
		if cfg.Stopwords == "english" {
			opts.Stopwords = tfidf.EnglishStopwords()
		}
		return func() domain.Index { return tfidf.New(opts) }, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai index config missing")
		}
		proto, err := openai.New(openai.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
			Model:       cfg.OpenAI.Model,
			Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries:  cfg.OpenAI.MaxRetries,
			Concurrency: cfg.OpenAI.Concurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("openai index init failed: %w", err)
		}
		return func() domain.Index { return proto.Fresh() }, nil
	default:
		return nil, fmt.Errorf("unknown index: %s", cfg.Type)
	}
}
