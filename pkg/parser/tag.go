package parser

import (
	"regexp"
	"strings"

	"github.com/clokai/clok/pkg/call"
)

// tagRecognizer handles the nested tag/attribute form:
//
//	<invoke name="read_file">
//	  <parameter name="path">main.go</parameter>
//	</invoke>
//
// Parameter values are decoded with best-effort coercion: JSON literals
// become their native types, everything else stays a string.
type tagRecognizer struct{}

var (
	invokeTag    = regexp.MustCompile(`(?s)<invoke name="([^"]+)"[^>]*>(.*?)</invoke>`)
	parameterTag = regexp.MustCompile(`(?s)<parameter name="([^"]+)">(.*?)</parameter>`)
)

func (tagRecognizer) scan(text string) ([]candidate, []call.ParseWarning) {
	var (
		hits     []candidate
		warnings []call.ParseWarning
	)

	for _, m := range invokeTag.FindAllStringSubmatchIndex(text, -1) {
		pos := m[0]
		tool := text[m[2]:m[3]]
		body := text[m[4]:m[5]]

		if strings.TrimSpace(tool) == "" {
			warnings = append(warnings, call.ParseWarning{
				Notation: call.NotationTag,
				Pos:      pos,
				Reason:   "invoke tag with empty tool name",
			})
			continue
		}

		args := map[string]interface{}{}
		for _, pm := range parameterTag.FindAllStringSubmatch(body, -1) {
			args[pm[1]] = coerceValue(pm[2])
		}

		hits = append(hits, candidate{
			tool:     tool,
			args:     args,
			rawArgs:  strings.TrimSpace(body),
			notation: call.NotationTag,
			pos:      pos,
		})
	}

	return hits, warnings
}
