// internal/providers/anthropic/provider.go
// Package anthropic provides a providers.Client backed by the Anthropic messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/promptlab/promptlab/internal/logging"
	"github.com/promptlab/promptlab/internal/providers"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Provider implements providers.Client using the Anthropic HTTP API.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	pricing *providers.Pricing
}

// New constructs a Provider. A nil client falls back to http.DefaultClient.
func New(apiKey string, client *http.Client, pricing *providers.Pricing) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if pricing == nil {
		pricing = providers.DefaultPricing()
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  client,
		pricing: pricing,
	}
}

// SetBaseURL overrides the API endpoint, primarily for tests.
func (p *Provider) SetBaseURL(url string) {
	p.baseURL = strings.TrimRight(url, "/")
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one messages request. The short Claude model names are
// mapped to their dated API identifiers before dispatch; pricing stays keyed
// by the short name.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	apiModel := providers.AnthropicModel(req.Model)
	payload := messagesRequest{
		Model:     apiModel,
		MaxTokens: req.MaxTokens,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LAB->LLM", providers.FamilyAnthropic, apiModel, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LLM->LAB", providers.FamilyAnthropic, apiModel, respBody)

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return nil, &providers.Error{
			Provider:   providers.FamilyAnthropic,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	var msg messagesResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}

	var output strings.Builder
	for _, block := range msg.Content {
		if block.Type == "" || block.Type == "text" {
			output.WriteString(block.Text)
		}
	}

	return &providers.Completion{
		Output:       output.String(),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
		Cost:         p.pricing.Cost(req.Model, msg.Usage.InputTokens, msg.Usage.OutputTokens),
	}, nil
}
