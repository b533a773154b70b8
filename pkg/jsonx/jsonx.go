package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject pulls the outermost JSON object out of arbitrary model
// output. It strips markdown code fences first, then falls back to the
// outermost balanced brace pair. Returns "" when no object can be located.
func ExtractObject(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if fenced := stripFence(text); fenced != "" {
		text = fenced
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	// Unbalanced: best effort up to the last closing brace.
	if end := strings.LastIndexByte(text, '}'); end > start {
		return text[start : end+1]
	}
	return ""
}

// DecodeObject extracts and unmarshals one JSON object into out.
func DecodeObject(text string, out any) error {
	raw := ExtractObject(text)
	if raw == "" {
		return fmt.Errorf("no json object found in %d bytes of output", len(text))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("unmarshal extracted object: %w", err)
	}
	return nil
}

func stripFence(text string) string {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return ""
	}
	rest := text[idx+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		head := strings.TrimSpace(rest[:nl])
		if head == "json" || head == "JSON" || head == "" {
			rest = rest[nl+1:]
		}
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
