// Package parser extracts structured tool-call descriptors from raw model
// output. A single response may mix notations, so every recognizer runs
// over the same text and the results are merged in source order.
package parser

import (
	"fmt"
	"sort"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/call"
)

// candidate is a recognizer hit before IDs and indices are assigned.
type candidate struct {
	tool     string
	args     map[string]interface{}
	rawArgs  string
	notation call.Notation
	pos      int
}

// recognizer scans one notation. Implementations are stateless.
type recognizer interface {
	scan(text string) ([]candidate, []call.ParseWarning)
}

// Parser turns raw text into an ordered descriptor sequence. It is
// stateless and safe for concurrent use.
type Parser struct {
	recognizers []recognizer
}

// New returns a parser covering the directive, JSON-array, and tag
// notations.
func New() *Parser {
	return &Parser{
		recognizers: []recognizer{
			directiveRecognizer{},
			jsonArrayRecognizer{},
			tagRecognizer{},
		},
	}
}

// Parse extracts every well-formed descriptor from text, in source order.
// Malformed fragments are reported as warnings and skipped; duplicates
// and whitespace-only descriptors are preserved as distinct items.
func (p *Parser) Parse(text string) ([]call.Descriptor, []call.ParseWarning) {
	var (
		found    []candidate
		warnings []call.ParseWarning
	)

	for _, r := range p.recognizers {
		hits, warns := r.scan(text)
		found = append(found, hits...)
		warnings = append(warnings, warns...)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].pos < found[j].pos
	})

	descriptors := make([]call.Descriptor, 0, len(found))
	for i, c := range found {
		args := c.args
		if args == nil {
			args = map[string]interface{}{}
		}
		descriptors = append(descriptors, call.Descriptor{
			ID:       newDescriptorID(i),
			Tool:     c.tool,
			Args:     args,
			RawArgs:  c.rawArgs,
			Notation: c.notation,
			Pos:      c.pos,
			Index:    i,
		})
	}

	log.Debug().
		Int("descriptors", len(descriptors)).
		Int("warnings", len(warnings)).
		Msg("Parse pass completed")

	return descriptors, warnings
}

func newDescriptorID(index int) string {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Sprintf("desc-%d", index)
	}
	return id
}
