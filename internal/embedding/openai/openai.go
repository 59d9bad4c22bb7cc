// Package openai embeds text through an OpenAI-compatible (or Ollama)
// embeddings endpoint.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var errNoEmbedding = errors.New("no embedding returned")

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	// MaxRetries defaults to 5; Backoff is the first retry delay and doubles
	// per attempt up to 5s.
	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
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
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		logger:     cfg.Logger,
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Prepare probes the endpoint once so Dimension is known before indexing.
func (c *Client) Prepare(corpus []string) error {
	if c.dimension > 0 || len(corpus) == 0 {
		return nil
	}
	_, err := c.Embed(corpus[0])
	return err
}

// Dimension is zero until the first successful Embed.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text, retrying on
// transport errors, 429 and 5xx responses.
func (c *Client) Embed(text string) ([]float32, error) {
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	body, err := json.Marshal(struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}{Input: text, Prompt: text, Model: c.model})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying embeddings request", zap.Int("attempt", attempt), zap.Error(lastErr))
		}
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.sleep(attempt, "")
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("openai embeddings failed: %s", resp.Status)
			c.sleep(attempt, resp.Header.Get("Retry-After"))
			continue
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("openai embeddings failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			c.sleep(attempt, "")
			continue
		}
		v, err := decodeEmbedding(payload)
		if err != nil {
			lastErr = err
			c.sleep(attempt, "")
			continue
		}
		if c.dimension == 0 {
			c.dimension = len(v)
		}
		return v, nil
	}
	return nil, lastErr
}

// decodeEmbedding accepts the OpenAI shape {"data":[{"embedding":[...]}]}
// and the Ollama shape {"embedding":[...]}.
func decodeEmbedding(payload []byte) ([]float32, error) {
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(out.Data) > 0 && len(out.Data[0].Embedding) > 0 {
		return out.Data[0].Embedding, nil
	}
	if len(out.Embedding) > 0 {
		return out.Embedding, nil
	}
	return nil, errNoEmbedding
}

// sleep waits before the next attempt, honouring a numeric Retry-After.
func (c *Client) sleep(attempt int, retryAfter string) {
	if attempt >= c.maxRetries {
		return
	}
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		time.Sleep(time.Duration(secs) * time.Second)
		return
	}
	time.Sleep(retryDelay(c.backoff, attempt))
}

func retryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second || d <= 0 {
		d = 5 * time.Second
	}
	return d
}
