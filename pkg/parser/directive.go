package parser

import (
	"regexp"
	"strings"

	"github.com/clokai/clok/pkg/call"
)

// directiveRecognizer handles the line-oriented form:
//
//	TOOL_CALL: tool_name
//	ARGS: {"key": "value"}
//
// The same shape may appear inside a ```tool_call fence; the header match
// works in both placements so fenced directives are not counted twice.
type directiveRecognizer struct{}

var directiveHeader = regexp.MustCompile(`TOOL_CALL:[ \t]*(\w+)[ \t]*\r?\n[ \t]*ARGS:[ \t]*`)

func (directiveRecognizer) scan(text string) ([]candidate, []call.ParseWarning) {
	var (
		hits     []candidate
		warnings []call.ParseWarning
	)

	for _, m := range directiveHeader.FindAllStringSubmatchIndex(text, -1) {
		pos := m[0]
		tool := text[m[2]:m[3]]
		rest := m[1]

		// Skip whitespace between "ARGS:" and the object literal.
		for rest < len(text) && (text[rest] == ' ' || text[rest] == '\t' || text[rest] == '\n' || text[rest] == '\r') {
			rest++
		}
		if rest >= len(text) || text[rest] != '{' {
			warnings = append(warnings, call.ParseWarning{
				Notation: call.NotationDirective,
				Pos:      pos,
				Reason:   "directive " + tool + ": ARGS is not a JSON object",
			})
			continue
		}

		end := scanBalanced(text, rest, '{', '}')
		if end < 0 {
			warnings = append(warnings, call.ParseWarning{
				Notation: call.NotationDirective,
				Pos:      pos,
				Reason:   "directive " + tool + ": unterminated ARGS object",
			})
			continue
		}

		raw := text[rest:end]
		args, err := decodeArgsObject(raw)
		if err != nil {
			warnings = append(warnings, call.ParseWarning{
				Notation: call.NotationDirective,
				Pos:      pos,
				Reason:   "directive " + tool + ": " + err.Error(),
			})
			continue
		}

		hits = append(hits, candidate{
			tool:     tool,
			args:     args,
			rawArgs:  strings.TrimSpace(raw),
			notation: call.NotationDirective,
			pos:      pos,
		})
	}

	return hits, warnings
}
