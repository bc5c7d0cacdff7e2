package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/career-onboard/internal/config"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

func newServer(t *testing.T, handler http.HandlerFunc) config.Config {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.LLM.Host = srv.URL + "/v1"
	cfg.LLM.Model = "test-model"
	return cfg
}

func TestGenerateChatResponse(t *testing.T) {
	cfg := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"growthRate\":2}"},"finish_reason":"stop"}]}`))
	})

	adapter, err := NewLLMAdapter(cfg, logger.NewNop())
	require.NoError(t, err)

	text, err := adapter.GenerateChatResponse(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"growthRate":2}`, text)
}

func TestGenerateChatResponse_Errors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		cfg := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
		})
		adapter, err := NewLLMAdapter(cfg, logger.NewNop())
		require.NoError(t, err)

		_, err = adapter.GenerateChatResponse(context.Background(), "hello")
		assert.Error(t, err)
	})

	t.Run("no choices", func(t *testing.T) {
		cfg := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
		})
		adapter, err := NewLLMAdapter(cfg, logger.NewNop())
		require.NoError(t, err)

		_, err = adapter.GenerateChatResponse(context.Background(), "hello")
		assert.Error(t, err)
	})
}

func TestNewLLMAdapter_RequiresHost(t *testing.T) {
	_, err := NewLLMAdapter(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}
