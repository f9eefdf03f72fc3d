// Package aiclient calls chat-completions language services over HTTP.
// Two endpoint roles exist: a web-search-capable service used to gather
// weather/news context, and a rephrase service used to reduce that context
// into the final answer.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// Default model parameters for the two endpoint roles.
const (
	DefaultSearchModel   = "deepseek-chat"
	DefaultRephraseModel = "Qwen3-14B"
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 1024
)

// Options configures a single chat-completions endpoint.
type Options struct {
	BaseURL     string        // e.g. https://api.example.com/v1
	APIKey      string        // bearer token; empty disables the auth header
	Model       string        // model name sent with every request
	WebSearch   bool          // ask the service to ground answers in web search
	Temperature float64       // sampling temperature
	MaxTokens   int           // response token cap; 0 omits the field
	Timeout     time.Duration // transport-level timeout for the whole call
}

// Client is a chat-completions endpoint.
type Client struct {
	opts       Options
	httpClient *http.Client
}

var _ contract.ChatClient = &Client{} // Compile-time check

// New returns a Client for the given endpoint options.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = contract.DefaultAITimeout
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// NewSearchClient builds the web-search endpoint from validated config.
func NewSearchClient(cfg *contract.Config) *Client {
	model := cfg.SearchModel
	if model == "" {
		model = DefaultSearchModel
	}
	return New(Options{
		BaseURL:   cfg.SearchAPIBase,
		APIKey:    cfg.SearchAPIKey,
		Model:     model,
		WebSearch: true,
		Timeout:   cfg.AITimeout,
	})
}

// NewRephraseClient builds the rephrase endpoint from validated config.
func NewRephraseClient(cfg *contract.Config) *Client {
	model := cfg.RephraseModel
	if model == "" {
		model = DefaultRephraseModel
	}
	return New(Options{
		BaseURL:   cfg.RephraseAPIBase,
		APIKey:    cfg.RephraseAPIKey,
		Model:     model,
		MaxTokens: DefaultMaxTokens,
		Timeout:   cfg.AITimeout,
	})
}

// chatMessage is a single conversation turn.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the wire format of a completion request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	WebSearch   bool          `json:"web_search,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatResponse is the wire format of a completion response. Service-level
// failures arrive as an error string instead of an HTTP status.
type chatResponse struct {
	Error   string `json:"error,omitempty"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ask sends one user question and returns the first choice's message content.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	if c.opts.BaseURL == "" {
		return "", fmt.Errorf("%w: endpoint base URL is not configured", schema.ErrUpstreamService)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: question}},
		Temperature: c.opts.Temperature,
		Stream:      false,
		WebSearch:   c.opts.WebSearch,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := strings.TrimSuffix(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrUpstreamService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", schema.ErrUpstreamService, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d from %s", schema.ErrUpstreamService, resp.StatusCode, url)
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrMalformedUpstreamResponse, err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", schema.ErrUpstreamService, parsed.Error)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", schema.ErrMalformedUpstreamResponse)
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", schema.ErrMalformedUpstreamResponse)
	}
	return content, nil
}
