// Package report merges validation verdicts and execution results into
// one report ordered by original descriptor index, regardless of
// completion order.
package report

import (
	"fmt"

	"github.com/clokai/clok/pkg/call"
)

// Build produces the final report for one parse pass. Rejected
// redundant searches without a session-cached output are backfilled from
// an earlier identical descriptor's successful result in the same batch.
func Build(sessionID string, verdicts []call.Verdict, results []call.ExecutionResult, warnings []call.ParseWarning) *call.Report {
	byIndex := make(map[int]call.ExecutionResult, len(results))
	for _, res := range results {
		byIndex[res.Descriptor.Index] = res
	}

	// First successful output per cache key, for same-batch backfill.
	outputs := make(map[string]interface{})
	for _, res := range results {
		if res.Status != call.StatusSuccess {
			continue
		}
		key := res.Descriptor.CacheKey()
		if _, ok := outputs[key]; !ok {
			outputs[key] = res.Output
		}
	}

	r := &call.Report{
		SessionID: sessionID,
		Entries:   make([]call.Entry, 0, len(verdicts)),
		Warnings:  warnings,
	}
	r.Counts.Total = len(verdicts)

	for _, v := range verdicts {
		entry := call.Entry{
			Descriptor: v.Descriptor,
			Admitted:   v.Admitted,
		}

		if !v.Admitted {
			r.Counts.Rejected++
			entry.Status = call.StatusError
			entry.Reason = v.Reason
			entry.Output = v.CachedOutput
			if v.Reason == call.ReasonRedundantSearch {
				entry.Cached = true
				if entry.Output == nil {
					entry.Output = outputs[v.Descriptor.CacheKey()]
				}
			}
			entry.Summary = fmt.Sprintf("✗ %s: %s", v.Descriptor.Tool, v.Reason)
			r.Entries = append(r.Entries, entry)
			continue
		}

		r.Counts.Admitted++
		res, ok := byIndex[v.Descriptor.Index]
		if !ok {
			// Admitted but never executed; only reachable through a bug
			// upstream, surfaced rather than dropped.
			entry.Status = call.StatusError
			entry.Reason = "missing-result"
			entry.Summary = fmt.Sprintf("✗ %s: missing-result", v.Descriptor.Tool)
			r.Counts.Failed++
			r.Entries = append(r.Entries, entry)
			continue
		}

		entry.Status = res.Status
		entry.Output = res.Output
		entry.Duration = res.Duration
		entry.Cached = res.Cached

		if res.Status == call.StatusSuccess {
			r.Counts.Succeeded++
			entry.Summary = fmt.Sprintf("✓ %s completed", v.Descriptor.Tool)
		} else {
			r.Counts.Failed++
			entry.Reason = res.Reason
			if entry.Reason == "" {
				entry.Reason = res.Error
			}
			entry.Summary = fmt.Sprintf("✗ %s: %s", v.Descriptor.Tool, entry.Reason)
		}
		r.Entries = append(r.Entries, entry)
	}

	return r
}
