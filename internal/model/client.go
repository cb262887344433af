// internal/model/client.go

// Package model talks to the local inference server that hosts the
// fine-tuned LoRA adapter. The server exposes a llama-server style API:
// POST /completion for text generation, POST /tokenize and POST /detokenize
// for the tokenizer pair, and GET /health for readiness.
//
// The client is the single process-wide model handle: loaded once during
// startup, read-only afterwards, torn down on shutdown.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	apperrors "github.com/Violet0725/NLtoSQL/internal/common/errors"
	"github.com/Violet0725/NLtoSQL/internal/common/logger"
	"github.com/Violet0725/NLtoSQL/internal/common/metrics"
)

// Generation sentinels are shared with the errors package so that
// apperrors.NewGenerationError can match them with errors.Is.
var (
	ErrGenerationTimeout = apperrors.ErrGenerationTimeout
	ErrGenerationFailed  = apperrors.ErrGenerationFailed
	ErrAdapterMissing    = errors.New("ADAPTER_MISSING")
)

// Config holds settings for the inference server connection.
type Config struct {
	BaseURL      string
	AdapterPath  string
	MaxNewTokens int
	Temperature  float64
	Timeout      time.Duration
	MaxRetries   int
}

type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
	ready  atomic.Bool
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No client-level timeout; per-call contexts bound each request.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "model"}),
	}
}

// Load verifies the adapter directory on disk and pings the inference
// server, then marks the client ready. Until Load succeeds, Ready reports
// false and /ask answers 503.
func (c *Client) Load(ctx context.Context) error {
	adapterConfig := filepath.Join(c.config.AdapterPath, "adapter_config.json")
	if _, err := os.Stat(adapterConfig); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAdapterMissing, adapterConfig, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: inference server health returned status %d", ErrGenerationFailed, resp.StatusCode)
	}

	c.ready.Store(true)
	c.logger.Info("model loaded", map[string]interface{}{
		"adapterPath": c.config.AdapterPath,
		"baseURL":     c.config.BaseURL,
	})
	return nil
}

// Ready reports whether the model handle has been loaded.
func (c *Client) Ready() bool {
	return c.ready.Load()
}

// Close clears the ready flag on shutdown. Requests in flight finish
// naturally; new /ask calls see 503.
func (c *Client) Close() {
	c.ready.Store(false)
}

// Complete sends the prompt to the inference server and returns the raw
// generated text. Failed calls are retried with exponential backoff up to
// MaxRetries; context expiry surfaces as ErrGenerationTimeout.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, _ := json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"n_predict":   c.config.MaxNewTokens,
		"temperature": c.config.Temperature,
	})

	start := time.Now()

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrGenerationTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/completion", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", ErrGenerationTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrGenerationTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrGenerationFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrGenerationFailed, err)
	}

	elapsed := time.Since(start)
	metrics.GenerationDuration.Observe(elapsed.Seconds())
	c.logger.Info("completion finished", map[string]interface{}{
		"durationMs":  elapsed.Milliseconds(),
		"outputChars": len(apiResponse.Content),
	})

	return apiResponse.Content, nil
}

// Tokenize encodes text into token ids via the server's tokenizer.
func (c *Client) Tokenize(ctx context.Context, text string) ([]int, error) {
	var out struct {
		Tokens []int `json:"tokens"`
	}
	if err := c.postJSON(ctx, "/tokenize", map[string]interface{}{"content": text}, &out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

// Detokenize decodes token ids back into text.
func (c *Client) Detokenize(ctx context.Context, tokens []int) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.postJSON(ctx, "/detokenize", map[string]interface{}{"tokens": tokens}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ErrGenerationTimeout
		}
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrGenerationFailed, err)
	}
	return nil
}
