// Package embedding implements the Embedder interface against an
// OpenAI-compatible embeddings endpoint.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/domain/services"
)

// Client is an OpenAI-compatible embeddings client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	client     *http.Client
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a new embeddings client from service configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) (services.Embedder, error) {
	if cfg.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.EmbeddingDim)
	}

	return &Client{
		baseURL:    cfg.EmbeddingBaseURL,
		apiKey:     cfg.EmbeddingAPIKey,
		model:      cfg.EmbeddingModel,
		dimension:  cfg.EmbeddingDim,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		logger:     logger,
	}, nil
}

// Dimension returns the dimensionality of produced vectors.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	for attempt := 0; ; attempt++ {
		vec, retryable, retryAfter, err := c.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		if !retryable || attempt >= c.maxRetries {
			return nil, fmt.Errorf("embed text: %w: %v", domain.ErrExternalService, err)
		}

		// A Retry-After hint from the server replaces the computed backoff
		delay := retryDelay(attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}

		c.logger.Debug("embedding request retry",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("embed text: %w: %v", domain.ErrExternalService, ctx.Err())
		case <-time.After(delay):
		}
	}
}

// EmbedBatch embeds every text, issuing requests concurrently with bounded
// parallelism. Each request is tagged with its ordinal and the results are
// reassembled by ordinal, so the output is index-aligned with the input. A
// failure of any request fails the whole batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.EmbeddingBatchConcurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := c.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("ordinal %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// embedOnce performs one request. retryable reports whether the failure is
// worth retrying (transport errors, 429, 5xx); retryAfter carries the
// server's Retry-After delay when one was sent. Waiting is left to the
// caller's retry loop so server hint and backoff never stack.
func (c *Client) embedOnce(ctx context.Context, text string) (vec []float32, retryable bool, retryAfter time.Duration, err error) {
	body, err := json.Marshal(struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: c.model})
	if err != nil {
		return nil, false, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, true, retryAfter, fmt.Errorf("embeddings endpoint returned %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, false, 0, fmt.Errorf("embeddings endpoint returned %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, 0, err
	}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, false, 0, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, false, 0, fmt.Errorf("no embedding returned")
	}

	vec = out.Data[0].Embedding
	if len(vec) != c.dimension {
		return nil, false, 0, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), c.dimension)
	}

	return vec, false, 0, nil
}

func retryDelay(attempt int) time.Duration {
	// exponential backoff capped at 5s
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
