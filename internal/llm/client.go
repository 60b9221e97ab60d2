// Package llm talks to an OpenAI-compatible chat-completions endpoint
// (Groq by default) and layers the summarization and fact-extraction
// capabilities the memory lifecycle needs on top of it.
//
// A Client is constructed per request with the calling user's decrypted
// API key; it holds no other state and is cheap to create.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/memvault/memvault/internal/models"
)

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the inference endpoint with one user's credentials.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a completion client for one API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the messages to the given model and returns the
// response text. An empty completion is a valid, low-value response,
// not an error; provider failures wrap ErrUpstream.
func (c *Client) Complete(ctx context.Context, modelID string, messages []Message, maxTokens int) (string, error) {
	reqBody := completionRequest{
		Model:     modelID,
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: completion API returned status %d: %s",
			models.ErrUpstream, resp.StatusCode, string(body))
	}

	var compResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&compResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", models.ErrUpstream, err)
	}

	if len(compResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", models.ErrUpstream)
	}

	return compResp.Choices[0].Message.Content, nil
}
