package call

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Notation identifies which textual form a descriptor was parsed from.
type Notation string

const (
	NotationDirective Notation = "directive"
	NotationJSONArray Notation = "json_array"
	NotationTag       Notation = "tag"
)

// Descriptor is the structured representation of one requested tool
// invocation. Immutable once parsed.
type Descriptor struct {
	ID       string                 `json:"id"`
	Tool     string                 `json:"tool"`
	Args     map[string]interface{} `json:"args"`
	RawArgs  string                 `json:"raw_args,omitempty"`
	Notation Notation               `json:"notation"`
	Pos      int                    `json:"pos"`
	Index    int                    `json:"index"`
}

// CacheKey returns a canonical identity for the descriptor's tool and
// arguments, stable across argument map iteration order.
func (d Descriptor) CacheKey() string {
	keys := make([]string, 0, len(d.Args))
	for k := range d.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(d.Tool)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		raw, err := json.Marshal(d.Args[k])
		if err != nil {
			b.WriteString("<unencodable>")
			continue
		}
		b.Write(raw)
	}
	return b.String()
}

// StringArg returns the named argument as a trimmed string, falling back
// through the given alternative keys. Non-string values are ignored.
func (d Descriptor) StringArg(keys ...string) string {
	for _, k := range keys {
		if v, ok := d.Args[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// ParseWarning records a fragment that looked like a tool call but could
// not be decoded. The fragment is skipped, never fatal.
type ParseWarning struct {
	Notation Notation `json:"notation"`
	Pos      int      `json:"pos"`
	Reason   string   `json:"reason"`
}

// Rejection reasons surfaced back to the model.
const (
	ReasonEmptyArguments   = "empty-arguments"
	ReasonConsecutiveLimit = "consecutive-limit"
	ReasonRedundantSearch  = "redundant-search"
	ReasonTimeout          = "timeout"
	ReasonCancelled        = "cancelled"
	ReasonUnknownTool      = "unknown-tool"
)

// Verdict is the validator's admit/reject decision for one descriptor.
type Verdict struct {
	Descriptor Descriptor `json:"descriptor"`
	Admitted   bool       `json:"admitted"`
	Reason     string     `json:"reason,omitempty"`
	// CachedOutput carries the previously computed result when a
	// redundant search is rejected.
	CachedOutput interface{} `json:"cached_output,omitempty"`
}

// Group is a set of admitted descriptors that are safe to execute
// concurrently: no two members share a non-empty resource key.
type Group struct {
	Index       int          `json:"index"`
	Descriptors []Descriptor `json:"descriptors"`
}

// Status of one execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ExecutionResult is the outcome of dispatching one descriptor.
type ExecutionResult struct {
	Descriptor Descriptor    `json:"descriptor"`
	Status     Status        `json:"status"`
	Output     interface{}   `json:"output,omitempty"`
	Error      string        `json:"error,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration"`
	Cached     bool          `json:"cached,omitempty"`
	GroupIndex int           `json:"group_index"`
}

// Entry is one row of the final report, in original parse order.
type Entry struct {
	Descriptor Descriptor    `json:"descriptor"`
	Admitted   bool          `json:"admitted"`
	Status     Status        `json:"status"`
	Output     interface{}   `json:"output,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Cached     bool          `json:"cached,omitempty"`
	Summary    string        `json:"summary"`
}

// Counts aggregates report outcomes.
type Counts struct {
	Total     int `json:"total"`
	Admitted  int `json:"admitted"`
	Rejected  int `json:"rejected"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Report merges verdicts and execution results for one parse pass.
// Entry order always equals original parse order.
type Report struct {
	SessionID string         `json:"session_id,omitempty"`
	Entries   []Entry        `json:"entries"`
	Counts    Counts         `json:"counts"`
	Warnings  []ParseWarning `json:"warnings,omitempty"`
}

// SummaryLines returns the per-entry one-line summaries in order.
func (r *Report) SummaryLines() []string {
	lines := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		lines = append(lines, e.Summary)
	}
	return lines
}
