// Package chat relays user messages to an external chat completion
// provider. The relay is stateless: no conversation memory is kept across
// calls, and every provider failure collapses into ErrProviderUnavailable
// so handlers can answer with the standard fallback text.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FallbackReply is returned to the client whenever the provider cannot be
// reached or answers with an error.
const FallbackReply = "Sorry, I couldn't process your request. Please try again later."

// ErrProviderUnavailable wraps every provider-side failure.
var ErrProviderUnavailable = errors.New("completion provider unavailable")

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	requestTimeout = 30 * time.Second
	maxTokens      = 100
)

// Client is a small HTTP client for a chat-completions style API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	hc      *http.Client
}

// NewClient creates a relay client. An empty baseURL selects the default
// provider endpoint; the HTTP client carries a bounded timeout so a hung
// provider cannot stall request handlers indefinitely.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   defaultModel,
		hc: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete forwards a single user message to the provider and returns the
// reply text. The call is retried once on transport errors and 5xx
// responses; any terminal failure is reported as ErrProviderUnavailable.
func (c *Client) Complete(ctx context.Context, userMessage string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		reply, retryable, err := c.complete(ctx, userMessage)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

func (c *Client) complete(ctx context.Context, userMessage string) (reply string, retryable bool, err error) {
	payload := completionRequest{
		Model:     c.model,
		Messages:  []message{{Role: "user", Content: userMessage}},
		MaxTokens: maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var completion completionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return "", false, err
	}
	if completion.Error != nil {
		return "", false, errors.New(completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", false, errors.New("provider returned no choices")
	}

	return completion.Choices[0].Message.Content, false, nil
}
