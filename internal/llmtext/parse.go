// Package llmtext implements tolerant parsing and reconciliation of
// generative-model text output.
//
// Models asked for JSON frequently return it wrapped in markdown code
// fences, prefixed with prose, or with trailing commentary. ParseLooseJSON
// recovers the embedded object instead of failing the request. When a model
// returns several candidate rewrites of a sentence, PickBestCorrectedText
// scores them against the itemised edit list and picks the one that actually
// incorporates the required corrections.
package llmtext

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseLooseJSON decodes raw model output into v. It attempts, in order:
// a direct parse, a parse after stripping markdown code fences, and a parse
// of the substring between the first '{' and the last '}'. It returns an
// error only when all three fail. No schema validation is performed beyond
// JSON syntax; callers re-check field types defensively.
func ParseLooseJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("llmtext: empty model output")
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	if unfenced := stripCodeFences(trimmed); unfenced != trimmed {
		if err := json.Unmarshal([]byte(unfenced), v); err == nil {
			return nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("llmtext: no parseable JSON object in model output")
}

// stripCodeFences removes a leading ```json (or bare ```) fence and the
// matching trailing fence. Text without fences is returned unchanged.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	// drop an optional language tag up to the first newline
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		first := strings.TrimSpace(body[:nl])
		if first == "" || isLanguageTag(first) {
			body = body[nl+1:]
		}
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return len(s) <= 10
}
