// internal/experiment/validate.go
package experiment

import (
	"fmt"
	"strings"
)

// Validation error codes surfaced to the user with a remediation message.
const (
	CodeEmptyPrompt    = "EMPTY_PROMPT"
	CodeNoSamples      = "NO_SAMPLES"
	CodeEmptySample    = "EMPTY_SAMPLE"
	CodeTooManySamples = "TOO_MANY_SAMPLES"
	CodeMissingModel   = "MISSING_MODEL"
)

// ValidationError reports a request that must be fixed before it is sent
// anywhere. Validation failures are never retried.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRequest checks a run request against the declared limits. The same
// checks run on both sides of the boundary: in the CLI before dispatch and in
// the API server before invoking any provider.
func ValidateRequest(prompt, model string, samples []Sample, maxSamples int) error {
	if strings.TrimSpace(prompt) == "" {
		return &ValidationError{
			Code:    CodeEmptyPrompt,
			Field:   "prompt",
			Message: "prompt template cannot be empty",
		}
	}
	if strings.TrimSpace(model) == "" {
		return &ValidationError{
			Code:    CodeMissingModel,
			Field:   "model",
			Message: "model selection is required",
		}
	}
	if len(samples) == 0 {
		return &ValidationError{
			Code:    CodeNoSamples,
			Field:   "test_samples",
			Message: "at least one test sample is required",
		}
	}
	if maxSamples > 0 && len(samples) > maxSamples {
		return &ValidationError{
			Code:    CodeTooManySamples,
			Field:   "test_samples",
			Message: fmt.Sprintf("too many test samples: %d exceeds the limit of %d", len(samples), maxSamples),
		}
	}
	for i, s := range samples {
		if strings.TrimSpace(s.Text) == "" {
			return &ValidationError{
				Code:    CodeEmptySample,
				Field:   fmt.Sprintf("test_samples[%d]", i),
				Message: fmt.Sprintf("sample %d has empty text", i+1),
			}
		}
	}
	return nil
}
