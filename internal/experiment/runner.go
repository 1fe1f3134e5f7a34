// internal/experiment/runner.go
package experiment

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/internal/logging"
	"github.com/promptlab/promptlab/internal/providers"
)

const (
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// Runner evaluates a prompt against a batch of samples. The provider client
// is injected per run so credentials stay with the request that carried them.
type Runner struct {
	// MaxSamples caps the batch size; zero means no cap.
	MaxSamples int
}

// Run dispatches one provider call per sample and aggregates the results.
// Per-sample failure is data, not a run error: the returned experiment always
// has exactly one SampleResult per input sample, in input order.
func (r *Runner) Run(ctx context.Context, client providers.Client, prompt, model string, samples []Sample) (*Experiment, error) {
	if err := ValidateRequest(prompt, model, samples, r.MaxSamples); err != nil {
		return nil, err
	}

	results := make([]SampleResult, len(samples))
	var wg sync.WaitGroup
	for i, sample := range samples {
		wg.Add(1)
		go func(i int, sample Sample) {
			defer wg.Done()
			results[i] = runSample(ctx, client, prompt, model, sample)
		}(i, sample)
	}
	wg.Wait()

	accuracy, avgTokens, totalCost := Aggregate(results)
	exp := &Experiment{
		ExperimentID:  newExperimentID(),
		Prompt:        prompt,
		Model:         model,
		Accuracy:      accuracy,
		AvgTokens:     avgTokens,
		EstimatedCost: totalCost,
		SamplesTested: len(samples),
		CreatedAt:     time.Now().UTC(),
		SampleResults: results,
	}
	logging.LogEvent("experiment %s complete: model=%s samples=%d outcome=%s",
		exp.ExperimentID, model, len(samples), Classify(results))
	return exp, nil
}

func runSample(ctx context.Context, client providers.Client, prompt, model string, sample Sample) SampleResult {
	filled := FillTemplate(prompt, sample)
	completion, err := client.Complete(ctx, providers.CompletionRequest{
		Model:       model,
		Prompt:      filled,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return SampleResult{
			Input:    sample.Text,
			Expected: sample.ExpectedAnswer,
			Success:  false,
			Error:    err.Error(),
		}
	}
	return SampleResult{
		Input:    sample.Text,
		Expected: sample.ExpectedAnswer,
		Output:   completion.Output,
		Tokens:   completion.TotalTokens(),
		Cost:     completion.Cost,
		Accuracy: EvaluateAnswer(completion.Output, sample.ExpectedAnswer),
		Success:  true,
	}
}

func newExperimentID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
