// internal/server/handlers.go
package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/providers"
)

// experimentRequest is the POST /api/experiments body.
type experimentRequest struct {
	Prompt      string              `json:"prompt"`
	Model       string              `json:"model"`
	TestSamples []experiment.Sample `json:"test_samples"`
}

func keysFromHeaders(r *http.Request) Keys {
	return Keys{
		OpenAI:    strings.TrimSpace(r.Header.Get("X-OpenAI-API-Key")),
		Anthropic: strings.TrimSpace(r.Header.Get("X-Anthropic-API-Key")),
		Together:  strings.TrimSpace(r.Header.Get("X-Together-API-Key")),
	}
}

func (k Keys) forFamily(family string) string {
	switch family {
	case providers.FamilyOpenAI:
		return k.OpenAI
	case providers.FamilyAnthropic:
		return k.Anthropic
	case providers.FamilyTogether:
		return k.Together
	}
	return ""
}

func (s *Server) handleRunExperiment(w http.ResponseWriter, r *http.Request) {
	var req experimentRequest
	if err := decodeJSON(w, r, &req, 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "validation_error", nil)
		return
	}

	if err := experiment.ValidateRequest(req.Prompt, req.Model, req.TestSamples, s.cfg.MaxSamples()); err != nil {
		var vErr *experiment.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Message, "validation_error", map[string]any{
				"code":  vErr.Code,
				"field": vErr.Field,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), "validation_error", nil)
		return
	}

	family, err := providers.Family(req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "validation_error", map[string]any{"field": "model"})
		return
	}

	keys := keysFromHeaders(r)
	if keys.forFamily(family) == "" {
		writeError(w, http.StatusBadRequest,
			family+" API key required for this model. Please configure in API Settings.",
			"api_key_missing", map[string]any{"provider": family})
		return
	}

	client, err := s.newClient(req.Model, keys)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "validation_error", nil)
		return
	}

	exp, err := s.runner.Run(r.Context(), client, req.Prompt, req.Model, req.TestSamples)
	if err != nil {
		// Validation already ran, so anything here is unexpected.
		log.Printf("experiment run failed: %v", err)
		writeError(w, http.StatusInternalServerError, "experiment run failed", "llm_error", nil)
		return
	}

	// Runs where every sample failed are reported back so the user can see
	// what went wrong, but they are not persisted and do not count usage.
	if exp.SuccessCount() == 0 {
		if err := s.store.TouchUsage(); err != nil {
			log.Printf("touch usage: %v", err)
		}
		writeJSON(w, http.StatusOK, exp)
		return
	}

	if err := s.store.SaveExperiment(exp); err != nil {
		log.Printf("save experiment %s: %v", exp.ExperimentID, err)
		writeError(w, http.StatusInternalServerError, "failed to store experiment", "storage_error", nil)
		return
	}
	totalTokens := 0
	for _, res := range exp.SampleResults {
		if res.Success {
			totalTokens += res.Tokens
		}
	}
	if err := s.store.RecordRun(exp.SamplesTested, totalTokens, exp.EstimatedCost); err != nil {
		log.Printf("record usage: %v", err)
	}

	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleListExperiments(w http.ResponseWriter, _ *http.Request) {
	experiments, total, err := s.store.ListExperiments(historyLimit)
	if err != nil {
		log.Printf("list experiments: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list experiments", "storage_error", nil)
		return
	}
	if experiments == nil {
		experiments = []experiment.Experiment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"experiments": experiments,
		"total":       total,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.store.Usage()
	if err != nil {
		log.Printf("usage stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load usage", "storage_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type exportRequest struct {
	ExperimentIDs []string `json:"experiment_ids"`
}

// handleExport produces a CSV summary of the selected experiments.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req, 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "validation_error", nil)
		return
	}
	if len(req.ExperimentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "no experiments selected", "validation_error", nil)
		return
	}

	matched, err := s.store.GetExperiments(req.ExperimentIDs)
	if err != nil {
		log.Printf("export experiments: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to export experiments", "storage_error", nil)
		return
	}

	var csv strings.Builder
	csv.WriteString("experiment_id,model,accuracy,avg_tokens,estimated_cost\n")
	for _, exp := range matched {
		csv.WriteString(strings.Join([]string{
			exp.ExperimentID,
			exp.Model,
			formatFloat(exp.Accuracy),
			formatFloat(exp.AvgTokens),
			formatFloat(exp.EstimatedCost),
		}, ","))
		csv.WriteByte('\n')
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"format": "csv",
		"data":   csv.String(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	resetType := r.URL.Query().Get("reset_type")
	if resetType == "" {
		resetType = "experiments"
	}
	switch resetType {
	case "experiments", "usage", "all":
	default:
		writeError(w, http.StatusBadRequest, "invalid reset_type: "+resetType, "validation_error", nil)
		return
	}

	if resetType == "experiments" || resetType == "all" {
		deleted, err := s.store.ResetExperiments()
		if err != nil {
			log.Printf("reset experiments: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to reset data", "storage_error", nil)
			return
		}
		log.Printf("deleted %d experiments", deleted)
	}
	if resetType == "usage" || resetType == "all" {
		if err := s.store.ResetUsage(); err != nil {
			log.Printf("reset usage: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to reset data", "storage_error", nil)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "successfully reset " + resetType + " data",
		"reset_type": resetType,
	})
}
