// Package llm provides the language model gateway used by the chat and
// summary features. The client speaks the OpenAI chat-completions wire format
// so any compatible provider works via the base URL.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message represents one chat message sent to the gateway.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Options control sampling for a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Provider defines the interface for the text-completion gateway.
type Provider interface {
	// Complete generates a completion for an ordered message list.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Client is an HTTP Provider for OpenAI-compatible APIs.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient creates a gateway client for the given endpoint and model.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete performs one synchronous chat-completion request. The request is
// bound to ctx, so an abandoned caller cancels the in-flight call.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		reqBody["max_tokens"] = opts.MaxTokens
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm: completion returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm: failed to decode completion response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("llm: completion returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
