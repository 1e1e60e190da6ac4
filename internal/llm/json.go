package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/apperr"
)

// thinkTagRe strips <think>...</think> blocks reasoning models prepend.
var thinkTagRe = regexp.MustCompile(`(?s)\s*<think>.*?</think>\s*`)

// ExtractJSON pulls the first balanced JSON object or array out of a model
// response that may be wrapped in reasoning tags, markdown fences, or prose.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagRe.ReplaceAllString(response, "")

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if s, ok := balancedSlice(cleaned, '{', '}'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}
	if arrStart >= 0 {
		if s, ok := balancedSlice(cleaned, '[', ']'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}

	trimmed := strings.TrimSpace(cleaned)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	return "", fmt.Errorf("llm: no valid JSON in response: %w", apperr.ErrMalformedResponse)
}

// balancedSlice returns the first depth-balanced region starting at openChar.
// String literals and escapes are respected so braces inside values do not
// confuse the depth count.
func balancedSlice(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeResponse extracts JSON from a raw model response and unmarshals it.
func decodeResponse[T any](response string) (T, error) {
	var out T
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return out, fmt.Errorf("llm: decode response: %v: %w", err, apperr.ErrMalformedResponse)
	}
	return out, nil
}
