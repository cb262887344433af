package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Violet0725/NLtoSQL/internal/common/errors"
	"github.com/Violet0725/NLtoSQL/internal/common/logger"
)

func writeAdapterDir(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "adapter_config.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"base_model_name_or_path": "llama-3-8b"}`), 0o644))
	return dir
}

func newTestClient(t *testing.T, baseURL, adapterPath string) *Client {
	return NewClient(&Config{
		BaseURL:      baseURL,
		AdapterPath:  adapterPath,
		MaxNewTokens: 100,
		Temperature:  0.1,
		Timeout:      5 * time.Second,
		MaxRetries:   2,
	}, logger.NewTestLogger(t))
}

func TestLoad_SetsReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, writeAdapterDir(t))
	assert.False(t, c.Ready())

	assert.NoError(t, c.Load(context.Background()))
	assert.True(t, c.Ready())

	c.Close()
	assert.False(t, c.Ready())
}

func TestLoad_MissingAdapterDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, filepath.Join(t.TempDir(), "missing"))
	err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrAdapterMissing)
	assert.False(t, c.Ready())
}

func TestLoad_UnhealthyServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, writeAdapterDir(t))
	err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.False(t, c.Ready())
}

func TestComplete_ReturnsGeneratedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/completion", r.URL.Path)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["prompt"], "### Response:")
		assert.EqualValues(t, 100, body["n_predict"])

		json.NewEncoder(w).Encode(map[string]string{
			"content": "SELECT COUNT(*) FROM products",
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, writeAdapterDir(t))
	text, err := c.Complete(context.Background(), BuildPrompt("How many products?", "CREATE TABLE products (id)"))
	assert.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM products", text)
}

func TestComplete_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"content": "SELECT 1"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, writeAdapterDir(t))
	text, err := c.Complete(context.Background(), "prompt")
	assert.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)
	assert.EqualValues(t, 2, calls.Load())
}

func TestComplete_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, writeAdapterDir(t))
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestComplete_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"content": "SELECT 1"})
	}))
	defer srv.Close()

	c := NewClient(&Config{
		BaseURL:     srv.URL,
		AdapterPath: writeAdapterDir(t),
		Timeout:     50 * time.Millisecond,
		MaxRetries:  1,
	}, logger.NewNoOpLogger())

	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestComplete_TimeoutMapsToTimeoutCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"content": "SELECT 1"})
	}))
	defer srv.Close()

	c := NewClient(&Config{
		BaseURL:     srv.URL,
		AdapterPath: writeAdapterDir(t),
		Timeout:     50 * time.Millisecond,
		MaxRetries:  1,
	}, logger.NewNoOpLogger())

	_, err := c.Complete(context.Background(), "prompt")
	assert.Error(t, err)

	// The timeout sentinel is shared with the errors package, so the error
	// envelope classifies it as a timeout rather than a generic failure.
	stdErr := apperrors.NewGenerationError(err)
	assert.Equal(t, apperrors.ErrCodeGenerationTimeout, stdErr.Code)
	assert.Equal(t, http.StatusBadGateway, stdErr.HTTPStatus())
}

func TestTokenizeDetokenize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokenize":
			json.NewEncoder(w).Encode(map[string]interface{}{"tokens": []int{101, 102, 103}})
		case "/detokenize":
			json.NewEncoder(w).Encode(map[string]string{"content": "hello world"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, writeAdapterDir(t))

	tokens, err := c.Tokenize(context.Background(), "hello world")
	assert.NoError(t, err)
	assert.Equal(t, []int{101, 102, 103}, tokens)

	text, err := c.Detokenize(context.Background(), tokens)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("How many sales?", "CREATE TABLE sales (id INTEGER)")

	assert.Contains(t, prompt, "Question: How many sales?")
	assert.Contains(t, prompt, "Database schema:\nCREATE TABLE sales (id INTEGER)")
	assert.Contains(t, prompt, "### Instruction:")
	assert.Contains(t, prompt, "Question: How many products are there?")
	assert.True(t, len(prompt) > 0 && prompt[len(prompt)-1] == '\n')
	assert.Contains(t, prompt, "### Response:")
}
