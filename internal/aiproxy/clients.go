// Package aiproxy implements the LLM relay the dashboard's assistant
// panel talks to. It forwards a chat message to Claude or OpenAI,
// preferring Claude, and falls back across providers before failing.
package aiproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LLMClient is one upstream chat provider.
type LLMClient interface {
	// Generate sends the message with optional context and returns the
	// provider's text reply.
	Generate(ctx context.Context, message, chatContext string) (string, error)
	// Provider returns the provider name used in responses.
	Provider() string
	// Available reports whether the client is configured (has a key).
	Available() bool
}

const (
	defaultClaudeURL   = "https://api.anthropic.com/v1/messages"
	defaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	defaultClaudeModel = "claude-3-5-sonnet-20241022"
	defaultOpenAIModel = "gpt-4o-mini"
)

// ClaudeClient talks to the Anthropic messages API.
type ClaudeClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewClaudeClient creates a Claude client. An empty key leaves the
// client unavailable.
func NewClaudeClient(apiKey string) *ClaudeClient {
	return &ClaudeClient{
		apiKey:    apiKey,
		baseURL:   defaultClaudeURL,
		model:     defaultClaudeModel,
		maxTokens: 1024,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Provider returns "claude".
func (c *ClaudeClient) Provider() string { return "claude" }

// Available reports whether an API key is configured.
func (c *ClaudeClient) Available() bool { return c.apiKey != "" }

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the message to Claude.
func (c *ClaudeClient) Generate(ctx context.Context, message, chatContext string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("claude client not configured")
	}

	reqBody := claudeRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    chatContext,
		Messages:  []claudeMessage{{Role: "user", Content: message}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("claude API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("claude API request failed with status %d", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("no content in claude response")
	}
	return parsed.Content[0].Text, nil
}

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI client. An empty key leaves the
// client unavailable.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:    apiKey,
		baseURL:   defaultOpenAIURL,
		model:     defaultOpenAIModel,
		maxTokens: 1024,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Provider returns "openai".
func (c *OpenAIClient) Provider() string { return "openai" }

// Available reports whether an API key is configured.
func (c *OpenAIClient) Available() bool { return c.apiKey != "" }

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the message to OpenAI.
func (c *OpenAIClient) Generate(ctx context.Context, message, chatContext string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("openai client not configured")
	}

	messages := []openAIMessage{}
	if chatContext != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: chatContext})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: message})

	jsonData, err := json.Marshal(openAIRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("openai API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("openai API request failed with status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return parsed.Choices[0].Message.Content, nil
}
