// internal/providers/provider.go

// Package providers defines the interface for invoking hosted LLM APIs and the
// shared request/response types. Concrete clients live in the openai,
// anthropic, and together subpackages; routing a model name to the right
// client is the providerfactory package's job.
package providers

import (
	"context"
	"fmt"
	"strings"
)

// CompletionRequest asks a provider for a single completion of a fully
// rendered prompt.
type CompletionRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completion is a successful provider response with its token accounting and
// estimated cost.
type Completion struct {
	Output       string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// TotalTokens returns the combined input and output token count.
func (c Completion) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// Client is implemented by each provider-specific HTTP client.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// Error is a failed provider call. Message carries the upstream error text
// verbatim so callers can surface provider-specific guidance.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Provider family names, also used for credential lookup.
const (
	FamilyOpenAI    = "openai"
	FamilyAnthropic = "anthropic"
	FamilyTogether  = "together"
)

// togetherAliases maps short model names to their Together-hosted identifiers.
var togetherAliases = map[string]string{
	"llama-3.3-70b-turbo":    "meta-llama/Llama-3.3-70B-Instruct-Turbo",
	"llama-3.2-3b":           "meta-llama/Llama-3.2-3B-Instruct-Turbo",
	"qwen-2.5-72b":           "Qwen/Qwen2.5-72B-Instruct-Turbo",
	"qwen-2.5-7b":            "Qwen/Qwen2.5-7B-Instruct-Turbo",
	"deepseek-v3":            "deepseek-ai/DeepSeek-V3",
	"deepseek-r1-qwen-1.5b":  "deepseek-ai/DeepSeek-R1-Distill-Qwen-1.5B",
	"mixtral-8x7b":           "mistralai/Mixtral-8x7B-Instruct-v0.1",
	"llama-4-scout":          "meta-llama/Llama-4-Scout",
	"kimi-k2-instruct":       "kimi/Kimi-K2-Instruct",
}

// anthropicAliases maps short Claude names to dated API model identifiers.
var anthropicAliases = map[string]string{
	"claude-3-haiku":    "claude-3-haiku-20240307",
	"claude-3-sonnet":   "claude-3-sonnet-20240229",
	"claude-3-opus":     "claude-3-opus-20240229",
	"claude-3.5-sonnet": "claude-3-5-sonnet-20241022",
}

// Family resolves which provider serves the given model name.
func Family(model string) (string, error) {
	switch {
	case strings.HasPrefix(model, "gpt"):
		return FamilyOpenAI, nil
	case strings.HasPrefix(model, "claude"):
		return FamilyAnthropic, nil
	case strings.HasPrefix(model, "together/"):
		return FamilyTogether, nil
	}
	if _, ok := togetherAliases[model]; ok {
		return FamilyTogether, nil
	}
	return "", fmt.Errorf("unsupported model: %s", model)
}

// TogetherModel resolves a model name to its Together identifier.
func TogetherModel(model string) string {
	if mapped, ok := togetherAliases[model]; ok {
		return mapped
	}
	return strings.TrimPrefix(model, "together/")
}

// AnthropicModel resolves a short Claude name to its dated API identifier.
func AnthropicModel(model string) string {
	if mapped, ok := anthropicAliases[model]; ok {
		return mapped
	}
	return model
}
