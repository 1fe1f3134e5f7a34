package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/experiment"
)

func testClient(baseURL string) *Client {
	cfg := &appconfig.Config{APIBase: baseURL, TimeoutSeconds: 5}
	c := New(cfg, appconfig.Keys{OpenAI: "sk-test", Anthropic: "sk-ant-test", Together: "tok"})
	c.retryCfg.BaseDelay = time.Millisecond
	return c
}

func TestRunExperimentSendsEffectivePromptAndHeaders(t *testing.T) {
	var gotPrompt string
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt      string              `json:"prompt"`
			Model       string              `json:"model"`
			TestSamples []experiment.Sample `json:"test_samples"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotPrompt = body.Prompt
		gotHeader = r.Header.Get("X-OpenAI-API-Key")
		_ = json.NewEncoder(w).Encode(experiment.Experiment{ExperimentID: "abc123", Model: body.Model})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	exp, err := c.RunExperiment(context.Background(), "Answer: {text}", "Be terse.", "gpt-4", []experiment.Sample{{Text: "x"}})
	if err != nil {
		t.Fatalf("RunExperiment failed: %v", err)
	}
	if exp.ExperimentID != "abc123" {
		t.Fatalf("unexpected experiment id %q", exp.ExperimentID)
	}
	if gotPrompt != "Be terse.\n\nAnswer: {text}" {
		t.Fatalf("expected system context concatenated, got %q", gotPrompt)
	}
	if gotHeader != "sk-test" {
		t.Fatalf("expected key header, got %q", gotHeader)
	}
}

func TestRunExperimentValidatesBeforeDispatch(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	var vErr *experiment.ValidationError

	_, err := c.RunExperiment(context.Background(), "", "", "gpt-4", []experiment.Sample{{Text: "x"}})
	if !errors.As(err, &vErr) || vErr.Code != experiment.CodeEmptyPrompt {
		t.Fatalf("expected EMPTY_PROMPT validation error, got %v", err)
	}

	_, err = c.RunExperiment(context.Background(), "p", "", "gpt-4", nil)
	if !errors.As(err, &vErr) || vErr.Code != experiment.CodeNoSamples {
		t.Fatalf("expected NO_SAMPLES validation error, got %v", err)
	}

	if calls != 0 {
		t.Fatalf("validation failures must not reach the network, got %d calls", calls)
	}
}

func TestRunExperimentRejectsMalformedKey(t *testing.T) {
	cfg := &appconfig.Config{APIBase: "http://localhost:1"}
	c := New(cfg, appconfig.Keys{OpenAI: "not-a-key"})

	_, err := c.RunExperiment(context.Background(), "p", "", "gpt-4", []experiment.Sample{{Text: "x"}})
	var vErr *experiment.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for malformed key, got %v", err)
	}
}

func TestListRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"experiments": []experiment.Experiment{{ExperimentID: "ok"}},
			"total":       1,
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	experiments, total, err := c.ListExperiments(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if total != 1 || len(experiments) != 1 {
		t.Fatalf("unexpected result: %d experiments, total %d", len(experiments), total)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestListDoesNotRetryAuthFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   true,
			"message": "bad credentials",
			"details": map[string]any{"error_type": "auth_error"},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, _, err := c.ListExperiments(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected normalized error, got %v", err)
	}
	if apiErr.Type != TypeAuth {
		t.Fatalf("expected auth error type, got %s", apiErr.Type)
	}
	if apiErr.Message != "bad credentials" {
		t.Fatalf("expected server message preserved, got %q", apiErr.Message)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("401 must not be retried, got %d attempts", got)
	}
}

func TestNetworkErrorNormalized(t *testing.T) {
	cfg := &appconfig.Config{APIBase: "http://127.0.0.1:1", TimeoutSeconds: 1}
	c := New(cfg, appconfig.Keys{})
	c.retryCfg.BaseDelay = time.Millisecond

	err := c.Health(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected normalized error, got %v", err)
	}
	if apiErr.Type != TypeNetwork {
		t.Fatalf("expected network error type, got %s", apiErr.Type)
	}
}

func TestErrorTypeMapping(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{400, TypeValidation},
		{401, TypeAuth},
		{403, TypeAuth},
		{429, TypeRateLimit},
		{500, TypeServer},
		{503, TypeServer},
	}
	for _, tc := range cases {
		if got := typeForStatus(tc.status); got != tc.want {
			t.Fatalf("typeForStatus(%d) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestRetryableClassification(t *testing.T) {
	if IsRetryable(&Error{Type: TypeValidation}) {
		t.Fatal("validation errors must not be retryable")
	}
	if IsRetryable(&Error{Type: TypeAuth}) {
		t.Fatal("auth errors must not be retryable")
	}
	for _, typ := range []string{TypeRateLimit, TypeServer, TypeNetwork} {
		if !IsRetryable(&Error{Type: typ}) {
			t.Fatalf("%s errors must be retryable", typ)
		}
	}
}
