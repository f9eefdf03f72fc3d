package aiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatReply builds a minimal successful completion payload.
func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

// TestAsk tests the request shape and response extraction.
func TestAsk(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(chatReply("马六甲海峡近期有台风。"))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, APIKey: "sk-test", Model: "deepseek-chat", WebSearch: true})
	text, err := client.Ask(context.Background(), "为什么拥堵？")
	require.NoError(t, err)
	assert.Equal(t, "马六甲海峡近期有台风。", text)

	assert.Equal(t, "deepseek-chat", gotBody["model"])
	assert.Equal(t, true, gotBody["web_search"])
	assert.Equal(t, false, gotBody["stream"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "为什么拥堵？", msg["content"])
}

// TestAskUpstreamFailures tests the error taxonomy on bad responses.
func TestAskUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			"http error status",
			func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			schema.ErrUpstreamService,
		},
		{
			"service error field",
			func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "quota exceeded"})
			},
			schema.ErrUpstreamService,
		},
		{
			"no choices",
			func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
			},
			schema.ErrMalformedUpstreamResponse,
		},
		{
			"empty content",
			func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(chatReply(""))
			},
			schema.ErrMalformedUpstreamResponse,
		},
		{
			"invalid json",
			func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("not-json")) },
			schema.ErrMalformedUpstreamResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := New(Options{BaseURL: server.URL, Model: "m"})
			_, err := client.Ask(context.Background(), "q")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestAskWithoutBaseURL tests the unconfigured endpoint guard.
func TestAskWithoutBaseURL(t *testing.T) {
	client := New(Options{})
	_, err := client.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, schema.ErrUpstreamService)
}

// TestEndpointConstructors tests role defaults from config.
func TestEndpointConstructors(t *testing.T) {
	cfg := &contract.Config{SearchAPIBase: "http://s", RephraseAPIBase: "http://r"}

	search := NewSearchClient(cfg)
	assert.Equal(t, DefaultSearchModel, search.opts.Model)
	assert.True(t, search.opts.WebSearch)

	rephrase := NewRephraseClient(cfg)
	assert.Equal(t, DefaultRephraseModel, rephrase.opts.Model)
	assert.False(t, rephrase.opts.WebSearch)
	assert.Equal(t, DefaultMaxTokens, rephrase.opts.MaxTokens)
}

// TestRemoveThinkTag tests reasoning markup stripping.
func TestRemoveThinkTag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading block", "<think>内部推理</think>\n最终答案", "最终答案"},
		{"multiline block", "<think>line1\nline2</think>answer", "answer"},
		{"no block", "plain answer", "plain answer"},
		{"only block", "<think>everything</think>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveThinkTag(tt.in))
		})
	}
}
