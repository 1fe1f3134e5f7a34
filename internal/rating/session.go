// Package rating implements the manual star-rating workflow for a completed
// experiment. A Session walks the successful sample results in order, collects
// 1-5 star ratings, and converts a complete set of ratings into a manual
// accuracy score. Scores persist through a Store overlay keyed by experiment.
package rating

import (
	"errors"
	"fmt"

	"github.com/promptlab/promptlab/internal/experiment"
)

// ErrNothingToRate is returned by NewSession when the experiment has no
// successful sample results to review.
var ErrNothingToRate = errors.New("experiment has no successful samples to rate")

// ErrClosed is returned by operations on a session that has been closed.
var ErrClosed = errors.New("rating session is closed")

// IncompleteRatingError reports a Save attempt before every reviewable sample
// has been rated.
type IncompleteRatingError struct {
	Remaining int
}

func (e *IncompleteRatingError) Error() string {
	return fmt.Sprintf("cannot save: %d sample(s) still unrated", e.Remaining)
}

// MinStars and MaxStars bound a valid star rating.
const (
	MinStars = 1
	MaxStars = 5
)

// Session is an in-progress review of one experiment's successful samples.
// It is not safe for concurrent use.
type Session struct {
	experimentID string
	reviewable   []experiment.SampleResult
	ratings      map[int]int
	cursor       int
	closed       bool
}

// Option configures a new session.
type Option func(*Session)

// PreloadRatings seeds the session with previously saved ratings. Without this
// option a reopened session starts from a clean slate even when a prior rating
// exists for the experiment.
func PreloadRatings(prior map[int]int) Option {
	return func(s *Session) {
		for i, stars := range prior {
			if i >= 0 && i < len(s.reviewable) && stars >= MinStars && stars <= MaxStars {
				s.ratings[i] = stars
			}
		}
	}
}

// NewSession opens a review over the successful subsequence of the
// experiment's sample results. Failed samples are excluded entirely; they do
// not appear in the review and do not count toward the manual accuracy.
func NewSession(exp *experiment.Experiment, opts ...Option) (*Session, error) {
	var reviewable []experiment.SampleResult
	for _, r := range exp.SampleResults {
		if r.Success {
			reviewable = append(reviewable, r)
		}
	}
	if len(reviewable) == 0 {
		return nil, ErrNothingToRate
	}

	s := &Session{
		experimentID: exp.ExperimentID,
		reviewable:   reviewable,
		ratings:      make(map[int]int, len(reviewable)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ExperimentID returns the experiment under review.
func (s *Session) ExperimentID() string { return s.experimentID }

// Len returns the number of reviewable samples.
func (s *Session) Len() int { return len(s.reviewable) }

// Cursor returns the index of the sample currently under review.
func (s *Session) Cursor() int { return s.cursor }

// Current returns the sample under review.
func (s *Session) Current() experiment.SampleResult {
	return s.reviewable[s.cursor]
}

// RatingAt returns the stars recorded for the given reviewable index, or 0
// when it is unrated.
func (s *Session) RatingAt(i int) int { return s.ratings[i] }

// Rated returns how many reviewable samples have a rating.
func (s *Session) Rated() int { return len(s.ratings) }

// Complete reports whether every reviewable sample has been rated.
func (s *Session) Complete() bool { return len(s.ratings) == len(s.reviewable) }

// Rate records stars for the current sample and advances the cursor, except
// when already on the last sample. Re-rating a sample overwrites the prior
// value.
func (s *Session) Rate(stars int) error {
	if s.closed {
		return ErrClosed
	}
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("rating must be between %d and %d stars, got %d", MinStars, MaxStars, stars)
	}
	s.ratings[s.cursor] = stars
	if s.cursor < len(s.reviewable)-1 {
		s.cursor++
	}
	return nil
}

// Next moves the cursor forward, saturating at the last sample.
func (s *Session) Next() {
	if s.cursor < len(s.reviewable)-1 {
		s.cursor++
	}
}

// Prev moves the cursor backward, saturating at the first sample.
func (s *Session) Prev() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// Accuracy converts the recorded ratings into a 0-100 score. The score is the
// mean star rating scaled by 20, clamped to [0, 100].
func (s *Session) Accuracy() float64 {
	if len(s.ratings) == 0 {
		return 0
	}
	sum := 0
	for _, stars := range s.ratings {
		sum += stars
	}
	score := float64(sum) / float64(len(s.ratings)) * 20
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Save persists the completed rating set through the store and closes the
// session. Saving requires a rating for every reviewable sample; a partial
// set returns IncompleteRatingError and leaves the session open.
func (s *Session) Save(st *Store) (Saved, error) {
	if s.closed {
		return Saved{}, ErrClosed
	}
	if remaining := len(s.reviewable) - len(s.ratings); remaining > 0 {
		return Saved{}, &IncompleteRatingError{Remaining: remaining}
	}
	saved := Saved{
		Ratings:  make(map[int]int, len(s.ratings)),
		Accuracy: s.Accuracy(),
	}
	for i, stars := range s.ratings {
		saved.Ratings[i] = stars
	}
	if err := st.Put(s.experimentID, saved); err != nil {
		return Saved{}, err
	}
	s.closed = true
	return saved, nil
}

// Close abandons the session without persisting anything. Ratings entered so
// far are discarded.
func (s *Session) Close() {
	s.closed = true
	s.ratings = nil
}

// Closed reports whether the session has been saved or abandoned.
func (s *Session) Closed() bool { return s.closed }
