// Package dataset loads test samples from JSON files. Three file shapes are
// accepted, matching the formats users actually have on disk: a QA-pair
// document with an optional system context, a bare array of samples, and a
// wrapper object keyed by "samples" or "texts". Array elements may be objects
// or plain strings.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/promptlab/promptlab/internal/experiment"
)

// InvalidDatasetError reports a file that parsed as JSON but matched none of
// the accepted shapes, or matched a shape with invalid content. Nothing is
// loaded from an invalid file.
type InvalidDatasetError struct {
	Path    string
	Reasons []string
}

func (e *InvalidDatasetError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("dataset %s does not match any supported format", e.Path)
	}
	return fmt.Sprintf("dataset %s is invalid: %s", e.Path, strings.Join(e.Reasons, "; "))
}

// Dataset is the result of a successful import.
type Dataset struct {
	Samples       []experiment.Sample
	SystemContext string
}

// Schemas for the three accepted shapes. Array elements are validated by the
// sample schema shared across all of them.
var (
	sampleSchema = map[string]any{
		"oneOf": []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":        map[string]any{"type": "string"},
					"text":            map[string]any{"type": "string"},
					"answer":          map[string]any{"type": "string"},
					"expected_answer": map[string]any{"type": "string"},
				},
				"anyOf": []any{
					map[string]any{"required": []any{"question"}},
					map[string]any{"required": []any{"text"}},
				},
			},
		},
	}

	qaPairsSchema = map[string]any{
		"type":     "object",
		"required": []any{"qa_pairs"},
		"properties": map[string]any{
			"qa_pairs":       map[string]any{"type": "array", "minItems": 1, "items": sampleSchema},
			"system_context": map[string]any{"type": "string"},
		},
	}

	arraySchema = map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    sampleSchema,
	}

	wrapperSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"samples": map[string]any{"type": "array", "minItems": 1, "items": sampleSchema},
			"texts":   map[string]any{"type": "array", "minItems": 1, "items": sampleSchema},
		},
		"anyOf": []any{
			map[string]any{"required": []any{"samples"}},
			map[string]any{"required": []any{"texts"}},
		},
	}
)

// Load reads and validates the dataset file at path. Loading is all or
// nothing: a file with any invalid entry contributes no samples. Load has no
// side effects, so importing the same file twice yields the same dataset.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return Parse(path, raw)
}

// Parse validates raw JSON against the accepted shapes and extracts the
// samples. The path is used only for error messages.
func Parse(path string, raw []byte) (*Dataset, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &InvalidDatasetError{Path: path, Reasons: []string{fmt.Sprintf("not valid JSON: %v", err)}}
	}

	docLoader := gojsonschema.NewBytesLoader(raw)
	var reasons []string
	for _, shape := range []struct {
		name   string
		schema map[string]any
	}{
		{"qa_pairs document", qaPairsSchema},
		{"sample array", arraySchema},
		{"samples wrapper", wrapperSchema},
	} {
		result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(shape.schema), docLoader)
		if err != nil {
			return nil, fmt.Errorf("schema validation error: %w", err)
		}
		if result.Valid() {
			return extract(path, probe)
		}
		for _, desc := range result.Errors() {
			reasons = append(reasons, fmt.Sprintf("%s: %s", shape.name, desc))
		}
	}
	return nil, &InvalidDatasetError{Path: path, Reasons: reasons}
}

func extract(path string, doc any) (*Dataset, error) {
	ds := &Dataset{}

	switch v := doc.(type) {
	case []any:
		samples, err := extractSamples(path, v)
		if err != nil {
			return nil, err
		}
		ds.Samples = samples
		return ds, nil
	case map[string]any:
		if ctx, ok := v["system_context"].(string); ok {
			ds.SystemContext = ctx
		}
		for _, key := range []string{"qa_pairs", "samples", "texts"} {
			arr, ok := v[key].([]any)
			if !ok {
				continue
			}
			samples, err := extractSamples(path, arr)
			if err != nil {
				return nil, err
			}
			ds.Samples = samples
			return ds, nil
		}
	}
	return nil, &InvalidDatasetError{Path: path}
}

func extractSamples(path string, arr []any) ([]experiment.Sample, error) {
	samples := make([]experiment.Sample, 0, len(arr))
	for i, item := range arr {
		switch v := item.(type) {
		case string:
			samples = append(samples, experiment.Sample{Text: v})
		case map[string]any:
			s := experiment.Sample{}
			if q, ok := v["question"].(string); ok && q != "" {
				s.Text = q
			} else if text, ok := v["text"].(string); ok {
				s.Text = text
			}
			if a, ok := v["answer"].(string); ok && a != "" {
				s.ExpectedAnswer = a
			} else if ea, ok := v["expected_answer"].(string); ok {
				s.ExpectedAnswer = ea
			}
			if strings.TrimSpace(s.Text) == "" {
				return nil, &InvalidDatasetError{
					Path:    path,
					Reasons: []string{fmt.Sprintf("entry %d has no question or text", i)},
				}
			}
			samples = append(samples, s)
		default:
			return nil, &InvalidDatasetError{
				Path:    path,
				Reasons: []string{fmt.Sprintf("entry %d is neither an object nor a string", i)},
			}
		}
	}
	return samples, nil
}
