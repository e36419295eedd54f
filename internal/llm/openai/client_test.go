package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm"
)

func TestComplete_ReturnsMessageContent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" {\"total\": 3955} "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"}, slog.Default())
	out, err := c.Complete(context.Background(), llm.NewRequest(constants.DocContract, "CONTRACT", "kong.pdf"))
	require.NoError(t, err)
	assert.Equal(t, `{"total": 3955}`, string(out))

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	assert.Len(t, got["messages"], 3)
}

func TestComplete_Non2xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, slog.Default())
	_, err := c.Complete(context.Background(), llm.NewRequest(constants.DocLeadQuote, "quote", ""))
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestComplete_NoChoicesIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, slog.Default())
	_, err := c.Complete(context.Background(), llm.NewRequest(constants.DocExtrasQuote, "extras", ""))
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}
