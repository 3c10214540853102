package llm

import (
	"strings"
	"unicode/utf8"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// Models often wrap JSON in ```json ... ``` blocks even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the outermost {...} span of a response, or ""
// when there is none
func ExtractJSONObject(response string) string {
	return extractSpan(CleanJSONBlock(response), "{", "}")
}

// ExtractJSONArray returns the outermost [...] span of a response, or ""
// when there is none
func ExtractJSONArray(response string) string {
	return extractSpan(CleanJSONBlock(response), "[", "]")
}

func extractSpan(s, open, close string) string {
	start := strings.Index(s, open)
	end := strings.LastIndex(s, close)
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

// Truncate shortens s to at most maxLen bytes, appending an ellipsis when
// cut. The cut never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
