package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/phuslu/log"

	"sitechat/internal/logging"
)

// DefaultSelector picks paragraphs and headings.
const DefaultSelector = "p, h1, h2, h3, h4, h5, h6"

// ErrUnsupportedURL is returned for targets that are not absolute http(s) URLs.
var ErrUnsupportedURL = errors.New("unsupported URL")

// Config configures the page scraper.
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	Selector     string
	MaxBodyBytes int64
}

// Scraper fetches a single HTML page and extracts its text segments.
type Scraper struct {
	client *http.Client
	cfg    Config
	logger *log.Logger
}

// NewScraper creates a scraper. A nil client gets one with cfg.Timeout.
func NewScraper(cfg Config, client *http.Client, logger *log.Logger) *Scraper {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "sitechat/0.1"
	}
	if cfg.Selector == "" {
		cfg.Selector = DefaultSelector
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scraper{client: client, cfg: cfg, logger: logger}
}

// Name returns the identifier of this source.
func (s *Scraper) Name() string { return "web" }

// Accepts reports whether target looks like an http(s) URL.
func (s *Scraper) Accepts(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://")
}

// Extract downloads target and returns the text of every selected element.
func (s *Scraper) Extract(ctx context.Context, target string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, target)
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: %s", u, resp.Status)
	}

	segments, err := ExtractHTML(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes), s.cfg.Selector)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	s.logger.Info().
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Int("segments", len(segments)).
		Dur("took", time.Since(start)).
		Msg("page scraped")
	return segments, nil
}

// ExtractHTML parses an HTML document, drops script and style elements, and
// returns the whitespace-collapsed text of every element matching selector
// in document order.
func ExtractHTML(r io.Reader, selector string) ([]string, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript").Remove()

	var segments []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			segments = append(segments, text)
		}
	})
	return segments, nil
}
