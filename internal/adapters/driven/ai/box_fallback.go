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

// Ensure BoxFallback implements AIFallback
var _ driven.AIFallback = (*BoxFallback)(nil)

// BoxFallback implements AIFallback using the Box AI text generation API
type BoxFallback struct {
	accessToken string
	model       string
	baseURL     string
	client      *http.Client
}

// NewBoxFallback creates a new Box AI fallback client
func NewBoxFallback(accessToken, model, baseURL string) (driven.AIFallback, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("Box access token is required")
	}

	if baseURL == "" {
		baseURL = "https://api.box.com/2.0"
	}

	return &BoxFallback{
		accessToken: accessToken,
		model:       model,
		baseURL:     baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// textGenRequest is the request body for the Box AI text generation API
type textGenRequest struct {
	Prompt string `json:"prompt"`
	Items  []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"items"`
	AIAgent *struct {
		Type  string `json:"type"`
		Model string `json:"model,omitempty"`
	} `json:"ai_agent,omitempty"`
}

// textGenResponse is the response from the Box AI text generation API
type textGenResponse struct {
	Answer     string `json:"answer"`
	CreatedAt  string `json:"created_at"`
	Completion string `json:"completion_reason,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
}

// SuggestConversion asks Box AI for a target-dialect suggestion
func (b *BoxFallback) SuggestConversion(ctx context.Context, req driven.FallbackRequest) (*driven.FallbackResponse, error) {
	reqBody := textGenRequest{
		Prompt: buildPrompt(req),
		Items: []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		}{},
	}
	if b.model != "" {
		reqBody.AIAgent = &struct {
			Type  string `json:"type"`
			Model string `json:"model,omitempty"`
		}{Type: "ai_agent_text_gen", Model: b.model}
	}

	resp, err := b.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	return parseSuggestion(resp.Answer)
}

// Ping verifies the token by fetching the current user
func (b *BoxFallback) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", b.baseURL+"/users/me", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Box API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the client
func (b *BoxFallback) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// doRequest makes a request to the Box AI text generation API
func (b *BoxFallback) doRequest(ctx context.Context, reqBody textGenRequest) (*textGenResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/ai/text_gen", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var genResp textGenResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if genResp.Message != "" {
			return nil, fmt.Errorf("Box API error: %s (code: %s)", genResp.Message, genResp.Code)
		}
		return nil, fmt.Errorf("Box API returned status %d", resp.StatusCode)
	}

	return &genResp, nil
}
