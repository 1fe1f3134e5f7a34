// Package export produces the shareable JSON artifact for a single
// experiment. The artifact is self contained: aggregates are recomputed from
// the per-sample detail it embeds, so a reader never needs the server to
// interpret the file.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/history"
	"github.com/promptlab/promptlab/internal/rating"
)

// Metadata identifies the artifact.
type Metadata struct {
	ExperimentID string    `json:"experiment_id"`
	ExportedAt   time.Time `json:"exported_at"`
}

// Summary describes what was run.
type Summary struct {
	Prompt        string `json:"prompt"`
	Model         string `json:"model"`
	SamplesTested int    `json:"samples_tested"`
	SuccessCount  int    `json:"success_count"`
}

// Performance carries the effective accuracy and the aggregates recomputed
// from the sample detail.
type Performance struct {
	Accuracy      history.Accuracy `json:"accuracy"`
	TotalTokens   int              `json:"total_tokens"`
	AvgTokens     float64          `json:"avg_tokens"`
	EstimatedCost float64          `json:"estimated_cost"`
}

// ManualRating is included when the experiment carries a saved rating.
type ManualRating struct {
	Ratings  map[int]int `json:"ratings"`
	Accuracy float64     `json:"accuracy"`
}

// Artifact is the exported document.
type Artifact struct {
	Metadata     Metadata                  `json:"metadata"`
	Summary      Summary                   `json:"summary"`
	Performance  Performance               `json:"performance"`
	Samples      []experiment.SampleResult `json:"samples"`
	ManualRating *ManualRating             `json:"manual_rating,omitempty"`
}

// Build assembles the artifact for an experiment. The token and cost
// aggregates are recomputed from the successful sample results rather than
// copied from the experiment record. The rating store may be nil.
func Build(exp *experiment.Experiment, ratings *rating.Store, now time.Time) *Artifact {
	totalTokens := 0
	totalCost := 0.0
	successes := 0
	for _, r := range exp.SampleResults {
		if !r.Success {
			continue
		}
		successes++
		totalTokens += r.Tokens
		totalCost += r.Cost
	}
	avgTokens := 0.0
	if successes > 0 {
		avgTokens = float64(totalTokens) / float64(successes)
	}

	a := &Artifact{
		Metadata: Metadata{
			ExperimentID: exp.ExperimentID,
			ExportedAt:   now.UTC(),
		},
		Summary: Summary{
			Prompt:        exp.Prompt,
			Model:         exp.Model,
			SamplesTested: exp.SamplesTested,
			SuccessCount:  successes,
		},
		Performance: Performance{
			Accuracy:      history.Resolve(exp, ratings),
			TotalTokens:   totalTokens,
			AvgTokens:     avgTokens,
			EstimatedCost: totalCost,
		},
		Samples: exp.SampleResults,
	}

	if ratings != nil {
		if saved, ok := ratings.Get(exp.ExperimentID); ok {
			a.ManualRating = &ManualRating{
				Ratings:  saved.Ratings,
				Accuracy: saved.Accuracy,
			}
		}
	}
	return a
}

// WriteFile builds the artifact and writes it as indented JSON.
func WriteFile(path string, exp *experiment.Experiment, ratings *rating.Store) error {
	a := Build(exp, ratings, time.Now())
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export artifact: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing export artifact: %w", err)
	}
	return nil
}

// DefaultPath suggests a filename for the artifact.
func DefaultPath(experimentID string) string {
	return fmt.Sprintf("experiment_%s.json", experimentID)
}
