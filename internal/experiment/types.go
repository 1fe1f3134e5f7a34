// internal/experiment/types.go

// Package experiment defines the experiment data model shared by the API
// server and the CLI, plus the server-side runner that evaluates a prompt
// against a batch of test samples.
package experiment

import "time"

// Sample is one test input. Samples are immutable once submitted to a run.
type Sample struct {
	Text           string `json:"text"`
	ExpectedAnswer string `json:"expected_answer,omitempty"`
}

// SampleResult is the outcome of invoking the model once for one sample.
// When Success is false, Output is empty and Error carries the reason; the
// Accuracy of a failed sample is meaningless and excluded from aggregates.
type SampleResult struct {
	Input    string  `json:"input"`
	Expected string  `json:"expected,omitempty"`
	Output   string  `json:"output"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
	Accuracy float64 `json:"accuracy"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
}

// Experiment is one completed run of a prompt+model against a sample batch.
// The server assigns ExperimentID and never mutates the record afterward.
type Experiment struct {
	ExperimentID  string         `json:"experiment_id"`
	Prompt        string         `json:"prompt"`
	Model         string         `json:"model"`
	Accuracy      float64        `json:"accuracy"`
	AvgTokens     float64        `json:"avg_tokens"`
	EstimatedCost float64        `json:"estimated_cost"`
	SamplesTested int            `json:"samples_tested"`
	CreatedAt     time.Time      `json:"created_at"`
	SampleResults []SampleResult `json:"sample_results"`
}

// SuccessCount returns how many sample results succeeded.
func (e Experiment) SuccessCount() int {
	n := 0
	for _, r := range e.SampleResults {
		if r.Success {
			n++
		}
	}
	return n
}

// Outcome classifies a finished run for user feedback. It is presentational
// only and never stored.
type Outcome int

const (
	OutcomeAllFailed Outcome = iota
	OutcomePartial
	OutcomeAllSucceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllFailed:
		return "all failed"
	case OutcomePartial:
		return "partial"
	default:
		return "all succeeded"
	}
}

// Classify buckets a result set into all-failed, partial, or all-succeeded.
func Classify(results []SampleResult) Outcome {
	successes := 0
	for _, r := range results {
		if r.Success {
			successes++
		}
	}
	switch {
	case successes == 0:
		return OutcomeAllFailed
	case successes < len(results):
		return OutcomePartial
	default:
		return OutcomeAllSucceeded
	}
}
