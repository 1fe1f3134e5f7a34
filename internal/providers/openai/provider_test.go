package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/promptlab/promptlab/internal/providers"
)

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Paris"}},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3},
		})
	}))
	defer srv.Close()

	p := New("sk-test", srv.Client(), providers.DefaultPricing())
	p.SetBaseURL(srv.URL)

	got, err := p.Complete(context.Background(), providers.CompletionRequest{
		Model:       "gpt-4",
		Prompt:      "Capital of France?",
		MaxTokens:   100,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Output != "Paris" {
		t.Errorf("unexpected output %q", got.Output)
	}
	if got.InputTokens != 12 || got.OutputTokens != 3 {
		t.Errorf("unexpected token counts: %d/%d", got.InputTokens, got.OutputTokens)
	}
	if got.TotalTokens() != 15 {
		t.Errorf("TotalTokens = %d", got.TotalTokens())
	}
	if got.Cost <= 0 {
		t.Errorf("expected positive cost, got %v", got.Cost)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotBody.Model != "gpt-4" || len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "Capital of France?" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Incorrect API key provided"},
		})
	}))
	defer srv.Close()

	p := New("sk-bad", srv.Client(), nil)
	p.SetBaseURL(srv.URL)

	_, err := p.Complete(context.Background(), providers.CompletionRequest{Model: "gpt-4", Prompt: "x"})
	var provErr *providers.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected providers.Error, got %v", err)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected status %d", provErr.StatusCode)
	}
	if provErr.Message != "Incorrect API key provided" {
		t.Errorf("upstream message not extracted: %q", provErr.Message)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	p := New("sk-test", srv.Client(), nil)
	p.SetBaseURL(srv.URL)

	_, err := p.Complete(context.Background(), providers.CompletionRequest{Model: "gpt-4", Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
