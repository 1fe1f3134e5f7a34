package experiment

import "strings"

// HasOrgVerificationFailure reports whether any failed sample carries an
// upstream message about organization verification. Some models reject calls
// from unverified OpenAI organizations and the generic failure text buries
// the fix, so callers surface a dedicated hint.
func HasOrgVerificationFailure(results []SampleResult) bool {
	for _, r := range results {
		if r.Success {
			continue
		}
		msg := strings.ToLower(r.Error)
		if strings.Contains(msg, "verified") || strings.Contains(msg, "verify organization") {
			return true
		}
	}
	return false
}
