// internal/providers/together/provider.go
// Package together provides a providers.Client backed by the Together AI chat completions API.
package together

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

const defaultBaseURL = "https://api.together.xyz/v1"

// Provider implements providers.Client using the Together AI HTTP API.
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

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends one chat completion request, resolving short model aliases
// to their Together-hosted identifiers first.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	apiModel := providers.TogetherModel(req.Model)
	payload := chatRequest{
		Model:       apiModel,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LAB->LLM", providers.FamilyTogether, apiModel, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
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
	logging.LogRequest("LLM->LAB", providers.FamilyTogether, apiModel, respBody)

	if resp.StatusCode != http.StatusOK {
		return nil, &providers.Error{
			Provider:   providers.FamilyTogether,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("together: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, &providers.Error{
			Provider: providers.FamilyTogether,
			Message:  "response contained no choices",
		}
	}

	return &providers.Completion{
		Output:       chat.Choices[0].Message.Content,
		InputTokens:  chat.Usage.PromptTokens,
		OutputTokens: chat.Usage.CompletionTokens,
		Cost:         p.pricing.Cost(req.Model, chat.Usage.PromptTokens, chat.Usage.CompletionTokens),
	}, nil
}
