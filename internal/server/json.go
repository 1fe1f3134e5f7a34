// internal/server/json.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the normalized error body every endpoint shares:
// {"error": true, "message": ..., "details": {"error_type": ...}}.
func writeError(w http.ResponseWriter, status int, message, errorType string, extra map[string]any) {
	details := map[string]any{"error_type": errorType}
	for k, v := range extra {
		details[k] = v
	}
	writeJSON(w, status, map[string]any{
		"error":   true,
		"message": message,
		"details": details,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %s bytes", strconv.FormatInt(maxBytes, 10))
		}
		return err
	}
	// Reject trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected content after JSON body")
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
