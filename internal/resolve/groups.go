package resolve

import (
	"sort"

	"github.com/seaholm/nostrkit/internal/relay"
)

// Group is a named, priority-ranked set of relay endpoints. Higher
// priority groups are consulted first; groups are never queried
// concurrently with each other.
type Group struct {
	Name      string
	Priority  int
	Endpoints []string
}

// orderGroups returns the groups sorted by descending priority, with
// configuration order preserved among equal priorities and endpoint
// addresses normalized and deduplicated. Endpoints that fail to
// normalize are dropped; an unreachable spelling is not worth failing
// the whole group over.
func orderGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })

	for i := range out {
		out[i].Endpoints = normalizeEndpoints(out[i].Endpoints)
	}
	return out
}

// normalizeEndpoints canonicalizes addresses and collapses duplicates,
// preserving first-seen order.
func normalizeEndpoints(endpoints []string) []string {
	seen := make(map[string]bool, len(endpoints))
	var out []string
	for _, ep := range endpoints {
		normalized, err := relay.NormalizeURL(ep)
		if err != nil {
			continue
		}
		if !seen[normalized] {
			seen[normalized] = true
			out = append(out, normalized)
		}
	}
	return out
}
