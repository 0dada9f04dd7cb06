package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/clokai/clok/pkg/call"
)

// jsonArrayRecognizer handles the inline function-call form:
//
//	[{"tool": "read_file", "args": {"path": "main.go"}}]
//
// either inside a ```json fence or standalone. Fenced blocks are decoded
// first and blanked out so the standalone scan cannot count them twice.
type jsonArrayRecognizer struct{}

var jsonFence = regexp.MustCompile("(?s)```json[ \t]*\r?\n(.*?)\r?\n[ \t]*```")

func (jsonArrayRecognizer) scan(text string) ([]candidate, []call.ParseWarning) {
	var (
		hits     []candidate
		warnings []call.ParseWarning
	)

	remaining := []byte(text)
	for _, m := range jsonFence.FindAllStringSubmatchIndex(text, -1) {
		body := strings.TrimSpace(text[m[2]:m[3]])
		if !strings.HasPrefix(body, "[") {
			continue
		}
		found, ok := decodeToolArray(body, m[2])
		if !ok {
			warnings = append(warnings, call.ParseWarning{
				Notation: call.NotationJSONArray,
				Pos:      m[0],
				Reason:   "json fence: malformed tool array",
			})
		}
		hits = append(hits, found...)

		// Blank the fence so the standalone scan skips it. Offsets are
		// preserved because length does not change.
		for i := m[0]; i < m[1]; i++ {
			if remaining[i] != '\n' {
				remaining[i] = ' '
			}
		}
	}

	stripped := string(remaining)
	offset := 0
	for {
		idx := strings.IndexByte(stripped[offset:], '[')
		if idx < 0 {
			break
		}
		start := offset + idx
		end := scanBalanced(stripped, start, '[', ']')
		if end < 0 {
			break
		}
		if found, ok := decodeToolArray(stripped[start:end], start); ok && len(found) > 0 {
			hits = append(hits, found...)
			offset = end
			continue
		}
		// Not a tool array; plenty of brackets in prose are not tool
		// calls, so this is not a warning.
		offset = start + 1
	}

	return hits, warnings
}

// decodeToolArray decodes raw as a JSON array of {"tool": ..., "args": ...}
// objects. The boolean reports whether raw was a syntactically valid array
// of objects at all; entries without a "tool" key are skipped.
func decodeToolArray(raw string, pos int) ([]candidate, bool) {
	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}

	var hits []candidate
	for _, entry := range entries {
		tool, ok := entry["tool"].(string)
		if !ok || tool == "" {
			continue
		}
		args, _ := entry["args"].(map[string]interface{})
		rawArgs := ""
		if args != nil {
			if encoded, err := json.Marshal(args); err == nil {
				rawArgs = string(encoded)
			}
		}
		hits = append(hits, candidate{
			tool:     tool,
			args:     args,
			rawArgs:  rawArgs,
			notation: call.NotationJSONArray,
			pos:      pos,
		})
	}
	return hits, true
}
