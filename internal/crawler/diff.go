package crawler

import (
	"maps"
	"slices"
)

// Diff returns the ids present in extracted and absent from known, sorted
func Diff(extracted map[string]Listing, known map[string]struct{}) []string {
	ids := make([]string, 0, len(extracted))
	for id := range maps.Keys(extracted) {
		if _, ok := known[id]; ok {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
