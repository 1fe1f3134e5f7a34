package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/experiment"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleExperiment(id string, createdAt time.Time) *experiment.Experiment {
	return &experiment.Experiment{
		ExperimentID:  id,
		Prompt:        "Summarize: {text}",
		Model:         "gpt-3.5-turbo",
		Accuracy:      85.5,
		AvgTokens:     120,
		EstimatedCost: 0.0042,
		SamplesTested: 2,
		CreatedAt:     createdAt,
		SampleResults: []experiment.SampleResult{
			{Input: "a", Output: "ok", Tokens: 100, Cost: 0.002, Accuracy: 91, Success: true},
			{Input: "b", Success: false, Error: "rate limited"},
		},
	}
}

func TestSaveAndListExperiments(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC()

	require.NoError(t, s.SaveExperiment(sampleExperiment("old1", base.Add(-2*time.Hour))))
	require.NoError(t, s.SaveExperiment(sampleExperiment("new1", base)))
	require.NoError(t, s.SaveExperiment(sampleExperiment("mid1", base.Add(-time.Hour))))

	experiments, total, err := s.ListExperiments(10)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, experiments, 3)
	require.Equal(t, "new1", experiments[0].ExperimentID, "newest first")
	require.Equal(t, "mid1", experiments[1].ExperimentID)
	require.Equal(t, "old1", experiments[2].ExperimentID)

	got := experiments[0]
	require.Len(t, got.SampleResults, 2)
	require.True(t, got.SampleResults[0].Success)
	require.False(t, got.SampleResults[1].Success)
	require.Equal(t, "rate limited", got.SampleResults[1].Error)
	require.InDelta(t, 85.5, got.Accuracy, 1e-9)
}

func TestListExperimentsHonorsLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC()
	for i := 0; i < 12; i++ {
		exp := sampleExperiment(string(rune('a'+i))+"-id", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveExperiment(exp))
	}
	experiments, total, err := s.ListExperiments(10)
	require.NoError(t, err)
	require.Equal(t, 12, total)
	require.Len(t, experiments, 10)
}

func TestDuplicateExperimentIDRejected(t *testing.T) {
	s := openTestStore(t)
	exp := sampleExperiment("dup", time.Now().UTC())
	require.NoError(t, s.SaveExperiment(exp))
	require.Error(t, s.SaveExperiment(exp))
}

func TestGetExperiments(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC()
	require.NoError(t, s.SaveExperiment(sampleExperiment("one", base)))
	require.NoError(t, s.SaveExperiment(sampleExperiment("two", base.Add(time.Minute))))

	matched, err := s.GetExperiments([]string{"two", "missing"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "two", matched[0].ExperimentID)
}

func TestResetExperiments(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveExperiment(sampleExperiment("x", time.Now().UTC())))
	deleted, err := s.ResetExperiments()
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, total, err := s.ListExperiments(10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestUsageCounters(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Usage()
	require.NoError(t, err)
	require.Zero(t, stats.TotalExperiments)

	require.NoError(t, s.RecordRun(3, 450, 0.01))
	require.NoError(t, s.RecordRun(2, 150, 0.02))

	stats, err = s.Usage()
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalExperiments)
	require.Equal(t, 5, stats.TotalSamples)
	require.Equal(t, 600, stats.TotalTokens)
	require.InDelta(t, 0.03, stats.TotalCost, 1e-9)
	require.False(t, stats.LastUpdated.IsZero())

	require.NoError(t, s.TouchUsage())
	touched, err := s.Usage()
	require.NoError(t, err)
	require.Equal(t, 2, touched.TotalExperiments, "touch must not count a run")

	require.NoError(t, s.ResetUsage())
	stats, err = s.Usage()
	require.NoError(t, err)
	require.Zero(t, stats.TotalExperiments)
}
