package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// greedyObjectPattern spans from the first '{' to the last '}' across lines.
var greedyObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// thinkTagPattern matches <think>...</think> tags that may appear at the start of LLM responses.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSONObject finds the JSON object in a completion. The widest
// brace-delimited span is tried first; when it does not parse (chatter after
// the object that contains a brace, say) the first balanced object is tried.
// ok is false when no parseable object exists.
func ExtractJSONObject(response string) (obj map[string]json.RawMessage, ok bool) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	candidate := greedyObjectPattern.FindString(cleaned)
	if candidate == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj, true
	}

	if balanced, found := extractBalancedJSON(cleaned, '{', '}'); found {
		obj = nil
		if err := json.Unmarshal([]byte(balanced), &obj); err == nil {
			return obj, true
		}
	}

	return nil, false
}

// extractBalancedJSON finds the first balanced JSON structure starting with openChar.
// It handles nested structures by counting bracket depth.
func extractBalancedJSON(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
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

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
