// Package scheduler partitions admitted descriptors into ordered
// execution groups. Two descriptors sharing a non-empty resource key
// never land in the same group, and same-resource operations keep strict
// FIFO order by original parse index; everything else collapses into as
// few groups as possible to maximize concurrency.
package scheduler

import (
	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/call"
)

// KeyFunc derives the conflict key for a descriptor. An empty key means
// the descriptor is conflict-free.
type KeyFunc func(call.Descriptor) string

// Plan scans descriptors in original order and places each into the
// lowest-indexed open group that holds no other descriptor with the same
// non-empty resource key, opening a new group only when none qualifies.
func Plan(descriptors []call.Descriptor, keyOf KeyFunc) []call.Group {
	var (
		groups []call.Group
		// keys[i] tracks the non-empty resource keys present in group i.
		keys []map[string]bool
	)

	for _, d := range descriptors {
		key := keyOf(d)
		placed := false

		for i := range groups {
			if key != "" && keys[i][key] {
				continue
			}
			groups[i].Descriptors = append(groups[i].Descriptors, d)
			if key != "" {
				keys[i][key] = true
			}
			placed = true
			break
		}

		if !placed {
			groups = append(groups, call.Group{
				Index:       len(groups),
				Descriptors: []call.Descriptor{d},
			})
			set := make(map[string]bool)
			if key != "" {
				set[key] = true
			}
			keys = append(keys, set)
		}
	}

	log.Debug().
		Int("descriptors", len(descriptors)).
		Int("groups", len(groups)).
		Msg("Execution plan computed")

	return groups
}
