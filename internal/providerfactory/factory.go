// internal/providerfactory/factory.go
// Package providerfactory routes a model name to the provider client that
// serves it, wiring in credentials and the pricing table.
package providerfactory

import (
	"net/http"

	"github.com/promptlab/promptlab/internal/providers"
	"github.com/promptlab/promptlab/internal/providers/anthropic"
	"github.com/promptlab/promptlab/internal/providers/openai"
	"github.com/promptlab/promptlab/internal/providers/together"
)

// Keys are the per-provider credentials available for a run. On the server
// they come from request headers; in offline tooling from the environment.
type Keys struct {
	OpenAI    string
	Anthropic string
	Together  string
}

// ForFamily returns the credential for a provider family, or "" when none is
// configured.
func (k Keys) ForFamily(family string) string {
	switch family {
	case providers.FamilyOpenAI:
		return k.OpenAI
	case providers.FamilyAnthropic:
		return k.Anthropic
	case providers.FamilyTogether:
		return k.Together
	}
	return ""
}

// NewClient constructs the provider client that serves the given model. The
// caller is responsible for having checked that a credential is present; a
// missing key still produces a client whose calls will fail upstream.
func NewClient(model string, keys Keys, httpClient *http.Client, pricing *providers.Pricing) (providers.Client, error) {
	family, err := providers.Family(model)
	if err != nil {
		return nil, err
	}
	switch family {
	case providers.FamilyOpenAI:
		return openai.New(keys.OpenAI, httpClient, pricing), nil
	case providers.FamilyAnthropic:
		return anthropic.New(keys.Anthropic, httpClient, pricing), nil
	default:
		return together.New(keys.Together, httpClient, pricing), nil
	}
}
