package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// Ensure OpenAIFallback implements AIFallback
var _ driven.AIFallback = (*OpenAIFallback)(nil)

// OpenAIFallback implements AIFallback using the OpenAI chat completions API.
// It also covers OpenAI-compatible servers via a custom base URL.
type OpenAIFallback struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIFallback creates a new OpenAI fallback client
func NewOpenAIFallback(apiKey, model, baseURL string) (driven.AIFallback, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIFallback{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// chatMessage is one message in a chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat completions API
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is the response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// SuggestConversion asks the model for a target-dialect suggestion
func (o *OpenAIFallback) SuggestConversion(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a precise template syntax converter. Answer only with JSON."},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: 0,
	}

	resp, err := o.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}
	return parseSuggestion(resp.Choices[0].Message.Content)
}

// Ping verifies connectivity with a minimal completion request
func (o *OpenAIFallback) Ping(ctx context.Context) error {
	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "user", Content: "ping"},
		},
	}
	_, err := o.doRequest(ctx, reqBody)
	return err
}

// Close releases resources held by the client
func (o *OpenAIFallback) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

// doRequest makes a request to the chat completions API
func (o *OpenAIFallback) doRequest(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	return &chatResp, nil
}
