// Package call defines the shared data model of the tool-call pipeline:
// parsed descriptors, admission verdicts, execution groups and results,
// and the aggregated report handed back to the session layer.
package call
