// internal/experiment/prompt.go
package experiment

import "strings"

// BuildPrompt produces the effective prompt for a run. When a system context
// is set it is prepended to the template, separated by a blank line; this
// concatenation is the only templating done on the client side.
func BuildPrompt(systemContext, template string) string {
	if strings.TrimSpace(systemContext) == "" {
		return template
	}
	return systemContext + "\n\n" + template
}

// FillTemplate substitutes the sample's fields into the prompt. Placeholders
// use the field name in braces, e.g. "Answer: {text}".
func FillTemplate(prompt string, sample Sample) string {
	r := strings.NewReplacer(
		"{text}", sample.Text,
		"{expected_answer}", sample.ExpectedAnswer,
	)
	return r.Replace(prompt)
}
