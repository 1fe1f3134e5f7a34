// Package history merges server-side experiment records with the local manual
// rating overlay. Every accuracy it hands out carries its source, so callers
// can tell a manually rated score from a computed one.
package history

import (
	"context"
	"fmt"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/rating"
)

// Accuracy source tags.
const (
	SourceComputed = "computed"
	SourceManual   = "manual"
)

// Accuracy is an accuracy value tagged with where it came from. A manual
// rating always wins over the computed score.
type Accuracy struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// Resolve returns the effective accuracy for an experiment: the manual
// overlay when one exists, the computed score otherwise.
func Resolve(exp *experiment.Experiment, overlay *rating.Store) Accuracy {
	if overlay != nil {
		if saved, ok := overlay.Get(exp.ExperimentID); ok {
			return Accuracy{Source: SourceManual, Value: saved.Accuracy}
		}
	}
	return Accuracy{Source: SourceComputed, Value: exp.Accuracy}
}

// Entry is one experiment in the merged history listing.
type Entry struct {
	Experiment experiment.Experiment `json:"experiment"`
	Accuracy   Accuracy              `json:"accuracy"`
	Outcome    experiment.Outcome    `json:"outcome"`
}

// Point is one experiment rendered for accuracy comparison.
type Point struct {
	ExperimentID string   `json:"experiment_id"`
	Model        string   `json:"model"`
	Accuracy     Accuracy `json:"accuracy"`
	Cost         float64  `json:"cost"`
	Active       bool     `json:"active"`
}

// API is the subset of the backend client the history service uses.
type API interface {
	ListExperiments(ctx context.Context) ([]experiment.Experiment, int, error)
	Reset(ctx context.Context, resetType string) error
}

// Service answers history queries by combining the backend listing with the
// local rating overlay.
type Service struct {
	api     API
	ratings *rating.Store
}

// NewService builds a history service. The rating store may be nil, in which
// case every accuracy resolves to its computed value.
func NewService(api API, ratings *rating.Store) *Service {
	return &Service{api: api, ratings: ratings}
}

// List returns the experiment history newest first, each entry carrying its
// effective accuracy and outcome classification.
func (s *Service) List(ctx context.Context) ([]Entry, int, error) {
	experiments, total, err := s.api.ListExperiments(ctx)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]Entry, 0, len(experiments))
	for _, exp := range experiments {
		entries = append(entries, Entry{
			Experiment: exp,
			Accuracy:   Resolve(&exp, s.ratings),
			Outcome:    experiment.Classify(exp.SampleResults),
		})
	}
	return entries, total, nil
}

// ComparisonPoints returns the history as chart points. Experiments whose
// effective accuracy is zero or whose estimated cost is zero are omitted;
// they carry no signal worth plotting. activeID marks the experiment the
// caller is currently looking at, if any.
func (s *Service) ComparisonPoints(ctx context.Context, activeID string) ([]Point, error) {
	entries, _, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, len(entries))
	for _, e := range entries {
		if e.Accuracy.Value == 0 || e.Experiment.EstimatedCost == 0 {
			continue
		}
		points = append(points, Point{
			ExperimentID: e.Experiment.ExperimentID,
			Model:        e.Experiment.Model,
			Accuracy:     e.Accuracy,
			Cost:         e.Experiment.EstimatedCost,
			Active:       e.Experiment.ExperimentID == activeID,
		})
	}
	return points, nil
}

// ClearAll deletes the server-side experiment history and then the local
// rating overlay. When the server delete fails the local ratings are left
// untouched, so a retry still has both sides to clear.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.api.Reset(ctx, "experiments"); err != nil {
		return fmt.Errorf("clearing experiment history: %w", err)
	}
	if s.ratings != nil {
		if err := s.ratings.Clear(); err != nil {
			return fmt.Errorf("clearing local ratings: %w", err)
		}
	}
	return nil
}
