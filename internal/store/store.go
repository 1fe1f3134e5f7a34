// internal/store/store.go

// Package store persists experiments and usage totals in SQLite for the API
// server. The store is the server's system of record; manual ratings never
// land here, they stay client-side.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/promptlab/promptlab/internal/experiment"
)

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
    experiment_id  TEXT PRIMARY KEY,
    prompt         TEXT NOT NULL,
    model          TEXT NOT NULL,
    accuracy       REAL NOT NULL,
    avg_tokens     REAL NOT NULL,
    estimated_cost REAL NOT NULL,
    samples_tested INTEGER NOT NULL,
    created_at     TEXT NOT NULL,
    sample_results TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_experiments_created_at ON experiments(created_at);

CREATE TABLE IF NOT EXISTS usage (
    id                INTEGER PRIMARY KEY CHECK (id = 1),
    total_experiments INTEGER NOT NULL DEFAULT 0,
    total_samples     INTEGER NOT NULL DEFAULT 0,
    total_tokens      INTEGER NOT NULL DEFAULT 0,
    total_cost        REAL NOT NULL DEFAULT 0,
    last_updated      TEXT NOT NULL
);
`

// UsageStats is the running usage snapshot exposed via /api/usage.
type UsageStats struct {
	TotalExperiments int       `json:"total_experiments"`
	TotalSamples     int       `json:"total_samples"`
	TotalTokens      int       `json:"total_tokens"`
	TotalCost        float64   `json:"total_cost"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Store wraps the SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveExperiment inserts one completed experiment. Sample results are stored
// as a JSON blob; they are only ever read back whole.
func (s *Store) SaveExperiment(exp *experiment.Experiment) error {
	results, err := json.Marshal(exp.SampleResults)
	if err != nil {
		return fmt.Errorf("encode sample results: %w", err)
	}
	_, err = s.db.Exec(`
        INSERT INTO experiments
        (experiment_id, prompt, model, accuracy, avg_tokens, estimated_cost,
         samples_tested, created_at, sample_results)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ExperimentID,
		exp.Prompt,
		exp.Model,
		exp.Accuracy,
		exp.AvgTokens,
		exp.EstimatedCost,
		exp.SamplesTested,
		exp.CreatedAt.Format(time.RFC3339Nano),
		string(results),
	)
	if err != nil {
		return fmt.Errorf("insert experiment %s: %w", exp.ExperimentID, err)
	}
	return nil
}

// ListExperiments returns up to limit experiments newest-first, plus the
// total number of stored experiments.
func (s *Store) ListExperiments(limit int) ([]experiment.Experiment, int, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
        SELECT experiment_id, prompt, model, accuracy, avg_tokens,
               estimated_cost, samples_tested, created_at, sample_results
        FROM experiments
        ORDER BY created_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query experiments: %w", err)
	}
	defer rows.Close()

	var experiments []experiment.Experiment
	for rows.Next() {
		var exp experiment.Experiment
		var createdAt, results string
		if err := rows.Scan(
			&exp.ExperimentID, &exp.Prompt, &exp.Model, &exp.Accuracy,
			&exp.AvgTokens, &exp.EstimatedCost, &exp.SamplesTested,
			&createdAt, &results,
		); err != nil {
			return nil, 0, fmt.Errorf("scan experiment: %w", err)
		}
		if exp.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, 0, fmt.Errorf("parse created_at for %s: %w", exp.ExperimentID, err)
		}
		if err := json.Unmarshal([]byte(results), &exp.SampleResults); err != nil {
			return nil, 0, fmt.Errorf("decode sample results for %s: %w", exp.ExperimentID, err)
		}
		experiments = append(experiments, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM experiments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count experiments: %w", err)
	}
	return experiments, total, nil
}

// GetExperiments returns the stored experiments matching the given ids, in
// newest-first order. Unknown ids are silently skipped.
func (s *Store) GetExperiments(ids []string) ([]experiment.Experiment, error) {
	all, _, err := s.ListExperiments(1 << 20)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var matched []experiment.Experiment
	for _, exp := range all {
		if want[exp.ExperimentID] {
			matched = append(matched, exp)
		}
	}
	return matched, nil
}

// ResetExperiments deletes every stored experiment and returns how many rows
// were removed.
func (s *Store) ResetExperiments() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM experiments`)
	if err != nil {
		return 0, fmt.Errorf("delete experiments: %w", err)
	}
	return res.RowsAffected()
}

// RecordRun bumps the usage counters after a run with at least one success.
func (s *Store) RecordRun(samples, tokens int, cost float64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(`
        INSERT INTO usage (id, total_experiments, total_samples, total_tokens, total_cost, last_updated)
        VALUES (1, 1, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            total_experiments = total_experiments + 1,
            total_samples     = total_samples + excluded.total_samples,
            total_tokens      = total_tokens + excluded.total_tokens,
            total_cost        = total_cost + excluded.total_cost,
            last_updated      = excluded.last_updated`,
		samples, tokens, cost, now)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// TouchUsage refreshes last_updated without counting a run. Used for runs
// where every sample failed, which are reported but not persisted.
func (s *Store) TouchUsage() error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(`
        INSERT INTO usage (id, last_updated) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET last_updated = excluded.last_updated`, now)
	if err != nil {
		return fmt.Errorf("touch usage: %w", err)
	}
	return nil
}

// Usage returns the current usage snapshot; zeros when nothing is recorded.
func (s *Store) Usage() (UsageStats, error) {
	var stats UsageStats
	var lastUpdated string
	err := s.db.QueryRow(`
        SELECT total_experiments, total_samples, total_tokens, total_cost, last_updated
        FROM usage WHERE id = 1`).Scan(
		&stats.TotalExperiments, &stats.TotalSamples, &stats.TotalTokens,
		&stats.TotalCost, &lastUpdated)
	if err == sql.ErrNoRows {
		return UsageStats{}, nil
	}
	if err != nil {
		return UsageStats{}, fmt.Errorf("query usage: %w", err)
	}
	if stats.LastUpdated, err = time.Parse(time.RFC3339Nano, lastUpdated); err != nil {
		return UsageStats{}, fmt.Errorf("parse usage last_updated: %w", err)
	}
	return stats, nil
}

// ResetUsage clears the usage counters.
func (s *Store) ResetUsage() error {
	_, err := s.db.Exec(`DELETE FROM usage WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	return nil
}
