// internal/providers/pricing.go
package providers

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Rate is the price per 1K tokens for one model.
type Rate struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Pricing maps model names to per-1K token rates. Unknown models fall back to
// a per-family default so cost stays an estimate rather than an error.
type Pricing struct {
	Rates map[string]Rate `yaml:"rates"`
}

// DefaultPricing returns the built-in rate table.
func DefaultPricing() *Pricing {
	return &Pricing{Rates: map[string]Rate{
		"gpt-4o":            {Input: 0.005, Output: 0.015},
		"gpt-4-turbo":       {Input: 0.01, Output: 0.03},
		"gpt-4":             {Input: 0.03, Output: 0.06},
		"gpt-3.5-turbo":     {Input: 0.0005, Output: 0.0015},
		"claude-3-haiku":    {Input: 0.00025, Output: 0.00025},
		"claude-3-sonnet":   {Input: 0.003, Output: 0.003},
		"claude-3-opus":     {Input: 0.015, Output: 0.015},
		"claude-3.5-sonnet": {Input: 0.003, Output: 0.003},
	}}
}

// LoadPricing merges rates from a YAML file over the built-in table. An empty
// path returns the defaults unchanged.
func LoadPricing(path string) (*Pricing, error) {
	pricing := DefaultPricing()
	if path == "" {
		return pricing, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file %s: %w", path, err)
	}
	var override Pricing
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse pricing file %s: %w", path, err)
	}
	for model, rate := range override.Rates {
		pricing.Rates[model] = rate
	}
	return pricing, nil
}

// Cost estimates the dollar cost of a call given its token split.
func (p *Pricing) Cost(model string, inputTokens, outputTokens int) float64 {
	rate, ok := p.Rates[model]
	if !ok {
		rate = p.fallbackRate(model)
	}
	return float64(inputTokens)/1000*rate.Input + float64(outputTokens)/1000*rate.Output
}

func (p *Pricing) fallbackRate(model string) Rate {
	family, err := Family(model)
	if err != nil {
		return Rate{}
	}
	switch family {
	case FamilyOpenAI:
		return p.Rates["gpt-3.5-turbo"]
	case FamilyAnthropic:
		return p.Rates["claude-3-sonnet"]
	default:
		// Together bills are approximated at a flat per-token rate.
		return Rate{Input: 0.1, Output: 0.1}
	}
}
