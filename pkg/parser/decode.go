package parser

import (
	"encoding/json"
	"strings"
)

// decodeArgsObject parses a JSON object of tool arguments. Model output
// often embeds literal newlines inside string values, which strict JSON
// rejects, so a failed parse is retried with control characters escaped
// and the escapes undone afterwards.
func decodeArgsObject(raw string) (map[string]interface{}, error) {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	escaped := strings.NewReplacer(
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	).Replace(raw)

	if err := json.Unmarshal([]byte(escaped), &args); err != nil {
		return nil, err
	}

	unescape := strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t")
	for k, v := range args {
		if s, ok := v.(string); ok {
			args[k] = unescape.Replace(s)
		}
	}
	return args, nil
}

// coerceValue applies best-effort type coercion to a literal: JSON
// numbers, booleans, and nested structures decode to their native types,
// anything else stays a string.
func coerceValue(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	return trimmed
}

// scanBalanced returns the end offset (exclusive) of the bracketed value
// starting at start, respecting nesting and JSON string escapes. Returns
// -1 when the text ends before the bracket closes.
func scanBalanced(text string, start int, open, close byte) int {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
