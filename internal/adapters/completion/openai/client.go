// Package openai implements the completion client port against any
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
)

const (
	defaultUserAgent = "tm/completion"
	maxResponseBytes = 1 << 20
)

type Config struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	http      *http.Client
}

var _ ports.CompletionClient = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
	}
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete posts one chat completion exchange. Transport and HTTP-status
// failures wrap domain.ErrTransport; response-content policy (truncation,
// emptiness) is the caller's concern and is passed through flattened.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResult, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("encode completion request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("%w: perform request: %w", domain.ErrTransport, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return ports.CompletionResult{}, fmt.Errorf("%w: status %d: %s", domain.ErrTransport, response.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ports.CompletionResult{}, fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err)
	}
	if len(decoded.Choices) == 0 {
		return ports.CompletionResult{}, nil
	}

	choice := decoded.Choices[0]

	return ports.CompletionResult{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}, nil
}
