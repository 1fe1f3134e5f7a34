// internal/apiclient/client.go

// Package apiclient is the CLI's HTTP client for the experiment API. It
// validates inputs before anything leaves the process, attaches provider
// credentials as headers, retries transient failures, and normalizes every
// failure into the shared Error shape.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/providers"
	"github.com/promptlab/promptlab/internal/retry"
	"github.com/promptlab/promptlab/internal/store"
)

// Client talks to the experiment API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       appconfig.Keys
	retryCfg   retry.Config
	maxSamples int
}

// New constructs a Client from the application configuration and the
// credentials loaded from the environment.
func New(cfg *appconfig.Config, keys appconfig.Keys) *Client {
	retryCfg := retry.DefaultConfig()
	retryCfg.Retryable = IsRetryable

	return &Client{
		baseURL:    cfg.APIBaseURL(),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		keys:       keys,
		retryCfg:   retryCfg,
		maxSamples: cfg.MaxSamples(),
	}
}

// RunExperiment validates the request locally, then submits the batch in
// exactly one backend invocation. The run itself is never retried: a second
// attempt would re-bill every sample.
func (c *Client) RunExperiment(ctx context.Context, promptTemplate, systemContext, model string, samples []experiment.Sample) (*experiment.Experiment, error) {
	if err := experiment.ValidateRequest(promptTemplate, model, samples, c.maxSamples); err != nil {
		return nil, err
	}
	if err := c.checkKeyForModel(model); err != nil {
		return nil, err
	}

	prompt := experiment.BuildPrompt(systemContext, promptTemplate)
	body := map[string]any{
		"prompt":       prompt,
		"model":        model,
		"test_samples": samples,
	}

	var exp experiment.Experiment
	if err := c.do(ctx, http.MethodPost, "/api/experiments", body, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// ListExperiments fetches the stored experiments, newest-first, along with
// the total count held by the server.
func (c *Client) ListExperiments(ctx context.Context) ([]experiment.Experiment, int, error) {
	var out struct {
		Experiments []experiment.Experiment `json:"experiments"`
		Total       int                     `json:"total"`
	}
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/api/experiments", nil, &out)
	})
	if err != nil {
		return nil, 0, err
	}
	return out.Experiments, out.Total, nil
}

// Usage fetches the server's usage snapshot.
func (c *Client) Usage(ctx context.Context) (store.UsageStats, error) {
	var stats store.UsageStats
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/api/usage", nil, &stats)
	})
	return stats, err
}

// Reset asks the server to bulk-delete data of the given type.
func (c *Client) Reset(ctx context.Context, resetType string) error {
	path := "/api/reset?reset_type=" + resetType
	return retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.do(ctx, http.MethodDelete, path, nil, nil)
	})
}

// ExportCSV fetches the server-side CSV summary for the given experiments.
func (c *Client) ExportCSV(ctx context.Context, ids []string) (string, error) {
	var out struct {
		Format string `json:"format"`
		Data   string `json:"data"`
	}
	body := map[string]any{"experiment_ids": ids}
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/api/export", body, &out)
	})
	if err != nil {
		return "", err
	}
	return out.Data, nil
}

// Health probes the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// checkKeyForModel validates the stored credential for the provider family
// the model belongs to. Failures here are validation errors, not network ones.
func (c *Client) checkKeyForModel(model string) error {
	family, err := providers.Family(model)
	if err != nil {
		return &experiment.ValidationError{
			Code:    experiment.CodeMissingModel,
			Field:   "model",
			Message: err.Error(),
		}
	}
	var key string
	switch family {
	case providers.FamilyOpenAI:
		key = c.keys.OpenAI
	case providers.FamilyAnthropic:
		key = c.keys.Anthropic
	default:
		key = c.keys.Together
	}
	if err := appconfig.ValidateKey(family, key); err != nil {
		return &experiment.ValidationError{
			Code:    "MISSING_API_KEY",
			Field:   family,
			Message: err.Error(),
		}
	}
	return nil
}

// serverError mirrors the server's normalized error body.
type serverError struct {
	Error   bool           `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setKeyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Type: TypeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Type: TypeNetwork, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{
			Type:       typeForStatus(resp.StatusCode),
			Message:    strings.TrimSpace(string(respBody)),
			StatusCode: resp.StatusCode,
		}
		var parsed serverError
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Message != "" {
			apiErr.Message = parsed.Message
			apiErr.Details = parsed.Details
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &Error{Type: TypeServer, Message: "decode response: " + err.Error(), StatusCode: resp.StatusCode}
		}
	}
	return nil
}

func (c *Client) setKeyHeaders(req *http.Request) {
	if c.keys.OpenAI != "" {
		req.Header.Set("X-OpenAI-API-Key", c.keys.OpenAI)
	}
	if c.keys.Anthropic != "" {
		req.Header.Set("X-Anthropic-API-Key", c.keys.Anthropic)
	}
	if c.keys.Together != "" {
		req.Header.Set("X-Together-API-Key", c.keys.Together)
	}
}
