package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/promptlab/promptlab/internal/experiment"
)

func TestParseQAPairsWithSystemContext(t *testing.T) {
	raw := []byte(`{
		"system_context": "You are a geography tutor.",
		"qa_pairs": [
			{"question": "Capital of France?", "answer": "Paris"},
			{"question": "Capital of Japan?", "answer": "Tokyo"}
		]
	}`)

	ds, err := Parse("qa.json", raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ds.SystemContext != "You are a geography tutor." {
		t.Fatalf("unexpected system context %q", ds.SystemContext)
	}
	want := []experiment.Sample{
		{Text: "Capital of France?", ExpectedAnswer: "Paris"},
		{Text: "Capital of Japan?", ExpectedAnswer: "Tokyo"},
	}
	if !reflect.DeepEqual(ds.Samples, want) {
		t.Fatalf("unexpected samples: %+v", ds.Samples)
	}
}

func TestParseBareArrayOfObjects(t *testing.T) {
	raw := []byte(`[
		{"text": "Summarize this paragraph.", "expected_answer": "A summary."},
		{"question": "What is 2+2?", "answer": "4"}
	]`)

	ds, err := Parse("arr.json", raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []experiment.Sample{
		{Text: "Summarize this paragraph.", ExpectedAnswer: "A summary."},
		{Text: "What is 2+2?", ExpectedAnswer: "4"},
	}
	if !reflect.DeepEqual(ds.Samples, want) {
		t.Fatalf("unexpected samples: %+v", ds.Samples)
	}
}

func TestParseBareArrayOfStrings(t *testing.T) {
	raw := []byte(`["first input", "second input"]`)

	ds, err := Parse("strings.json", raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ds.Samples) != 2 || ds.Samples[0].Text != "first input" {
		t.Fatalf("unexpected samples: %+v", ds.Samples)
	}
	if ds.Samples[0].ExpectedAnswer != "" {
		t.Fatal("string entries must have no expected answer")
	}
}

func TestParseSamplesWrapper(t *testing.T) {
	for _, key := range []string{"samples", "texts"} {
		raw := []byte(`{"` + key + `": [{"text": "hello"}]}`)
		ds, err := Parse(key+".json", raw)
		if err != nil {
			t.Fatalf("Parse %s wrapper failed: %v", key, err)
		}
		if len(ds.Samples) != 1 || ds.Samples[0].Text != "hello" {
			t.Fatalf("unexpected samples for %s wrapper: %+v", key, ds.Samples)
		}
	}
}

func TestParseRejectsUnknownShape(t *testing.T) {
	cases := map[string]string{
		"scalar":        `42`,
		"empty object":  `{}`,
		"empty array":   `[]`,
		"wrong key":     `{"rows": [{"text": "x"}]}`,
		"numeric entry": `[1, 2, 3]`,
		"not json":      `{broken`,
	}
	for name, raw := range cases {
		_, err := Parse(name+".json", []byte(raw))
		var invalid *InvalidDatasetError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: expected InvalidDatasetError, got %v", name, err)
		}
	}
}

func TestParseNoPartialLoad(t *testing.T) {
	raw := []byte(`{"qa_pairs": [{"question": "ok?", "answer": "yes"}, {"answer": "orphaned"}]}`)

	ds, err := Parse("partial.json", raw)
	var invalid *InvalidDatasetError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidDatasetError, got %v", err)
	}
	if ds != nil {
		t.Fatal("invalid file must contribute no samples")
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.json")
	if err := os.WriteFile(path, []byte(`["a", "b"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("loading the same file twice must yield the same dataset")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var invalid *InvalidDatasetError
	if errors.As(err, &invalid) {
		t.Fatal("missing file is an IO error, not a format error")
	}
}
