package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"sitechat/internal/domain"
)

// Index embeds passages and queries through an OpenAI-compatible
// /embeddings endpoint. It also understands the Ollama response shape.
type Index struct {
	baseURL     string
	apiKey      string
	model       string
	client      *http.Client
	maxRetries  int
	concurrency int
	dimension   int
	built       bool
}

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	// MaxRetries bounds retries on 429, 5xx and transport errors.
	// Zero selects 5, a negative value disables retries.
	MaxRetries int
	// Concurrency bounds parallel requests during Build. Zero selects 4.
	Concurrency int
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// New creates an unbuilt embeddings index. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func New(cfg Config) (*Index, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = 5
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Index{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		client:      client,
		maxRetries:  cfg.MaxRetries,
		concurrency: cfg.Concurrency,
	}, nil
}

// Fresh returns an unbuilt index sharing x's client and settings.
func (x *Index) Fresh() *Index {
	return &Index{
		baseURL:     x.baseURL,
		apiKey:      x.apiKey,
		model:       x.model,
		client:      x.client,
		maxRetries:  x.maxRetries,
		concurrency: x.concurrency,
	}
}

// Name returns the identifier of this index implementation.
func (x *Index) Name() string { return "openai" }

// Dimension returns the embedding size observed during Build.
func (x *Index) Dimension() int { return x.dimension }

// Build embeds every passage, at most Concurrency requests at a time.
// All vectors must share one dimension.
func (x *Index) Build(ctx context.Context, corpus []string) ([][]float64, error) {
	if len(corpus) == 0 {
		return nil, domain.ErrEmptyInput
	}
	vectors := make([][]float64, len(corpus))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.concurrency)
	for i, text := range corpus {
		g.Go(func() error {
			v, err := x.embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed passage %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("passage %d embedded to %d dimensions, expected %d: %w", i, len(v), dim, domain.ErrDimensionMismatch)
		}
	}
	x.dimension = dim
	x.built = true
	return vectors, nil
}

// Project embeds a query with the same model used for Build.
func (x *Index) Project(ctx context.Context, text string) ([]float64, error) {
	if !x.built {
		return nil, domain.ErrIndexNotReady
	}
	return x.embed(ctx, text)
}

func (x *Index) embed(ctx context.Context, text string) ([]float64, error) {
	type reqBody struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}
	url := fmt.Sprintf("%s/embeddings", x.baseURL)
	data, err := json.Marshal(reqBody{Input: text, Prompt: text, Model: x.model})
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt <= x.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, lastDelay(lastErr, attempt-1)); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+x.apiKey)

		resp, err := x.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &retryableError{status: resp.Status, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		v, err := decodeEmbedding(payload)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("embeddings request failed after %d attempts: %w", x.maxRetries+1, lastErr)
}

func decodeEmbedding(payload []byte) ([]float64, error) {
	// OpenAI-compatible shape first
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding, nil
		}
	}
	// Ollama-native shape: { "embedding": [...] }
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding, nil
	}
	return nil, errors.New("no embedding returned")
}

type retryableError struct {
	status     string
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return "embeddings request failed: " + e.status }

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func lastDelay(err error, attempt int) time.Duration {
	var re *retryableError
	if errors.As(err, &re) && re.retryAfter > 0 {
		return re.retryAfter
	}
	return retryDelay(attempt)
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second || d <= 0 {
		d = 5 * time.Second
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
