// Package llmjson salvages JSON payloads from raw LLM completions.
// Model output is never trusted: chain-of-thought blocks and markdown
// fences are stripped, the payload is isolated by brace matching, and a
// single bounded repair pass fixes the most common malformations before
// parsing fails for good.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	thinkBlockPattern    = regexp.MustCompile(`(?is)<think>.*?</think>`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	emptySlotPattern     = regexp.MustCompile(`([\[{,])\s*([,\]}])`)
)

// Clean removes chain-of-thought delimiters and markdown code fences
// from a raw completion.
func Clean(raw string) string {
	cleaned := thinkBlockPattern.ReplaceAllString(raw, "")

	// Some models emit everything before an unterminated think block.
	if idx := strings.LastIndex(cleaned, "</think>"); idx != -1 {
		cleaned = cleaned[idx+len("</think>"):]
	}

	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// Repair applies the bounded fix-up pass: trailing commas are dropped
// and empty slots are filled with null. It never loops.
func Repair(payload string) string {
	fixed := trailingCommaPattern.ReplaceAllString(payload, "$1")
	fixed = emptySlotPattern.ReplaceAllString(fixed, "${1}null${2}")
	return fixed
}

// UnmarshalObject isolates the first {...last } span of a raw
// completion and decodes it into v, repairing and retrying once on a
// parse failure.
func UnmarshalObject(raw string, v any) error {
	return unmarshalDelimited(raw, "{", "}", v)
}

// UnmarshalArray is UnmarshalObject for a top-level JSON array.
func UnmarshalArray(raw string, v any) error {
	return unmarshalDelimited(raw, "[", "]", v)
}

func unmarshalDelimited(raw, open, close string, v any) error {
	cleaned := Clean(raw)

	start := strings.Index(cleaned, open)
	end := strings.LastIndex(cleaned, close)
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no %s...%s payload found in response", open, close)
	}
	candidate := cleaned[start : end+1]

	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	if err := json.Unmarshal([]byte(Repair(candidate)), v); err != nil {
		return fmt.Errorf("failed to parse payload after repair: %w", err)
	}
	return nil
}
