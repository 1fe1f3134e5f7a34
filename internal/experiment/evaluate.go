// internal/experiment/evaluate.go
package experiment

import "strings"

// EvaluateAnswer scores a model response against the expected answer on a
// 0..100 scale. With no expected answer, any non-empty response counts as
// correct. Otherwise: exact match scores 100, containment 80, and anything
// else a keyword-overlap ratio capped at 90.
func EvaluateAnswer(response, expected string) float64 {
	if strings.TrimSpace(expected) == "" {
		if strings.TrimSpace(response) != "" {
			return 100.0
		}
		return 0.0
	}

	responseLower := strings.ToLower(strings.TrimSpace(response))
	expectedLower := strings.ToLower(strings.TrimSpace(expected))

	if responseLower == expectedLower {
		return 100.0
	}
	if strings.Contains(responseLower, expectedLower) {
		return 80.0
	}

	responseWords := wordSet(responseLower)
	expectedWords := strings.Fields(expectedLower)
	if len(expectedWords) == 0 {
		return 0.0
	}

	seen := make(map[string]bool, len(expectedWords))
	overlap := 0
	for _, w := range expectedWords {
		if seen[w] {
			continue
		}
		seen[w] = true
		if responseWords[w] {
			overlap++
		}
	}
	accuracy := float64(overlap) / float64(len(seen)) * 100
	if accuracy > 90.0 {
		accuracy = 90.0
	}
	return accuracy
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// Aggregate computes the run-level metrics over the successful results only.
// Failed samples carry no meaningful accuracy and are excluded.
func Aggregate(results []SampleResult) (accuracy, avgTokens, totalCost float64) {
	successes := 0
	totalTokens := 0
	accuracySum := 0.0
	for _, r := range results {
		if !r.Success {
			continue
		}
		successes++
		totalTokens += r.Tokens
		totalCost += r.Cost
		accuracySum += r.Accuracy
	}
	if successes == 0 {
		return 0, 0, 0
	}
	return accuracySum / float64(successes), float64(totalTokens) / float64(successes), totalCost
}
