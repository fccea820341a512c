package engine

import (
	"sort"

	"github.com/nathoo/delveforge/types"
)

// listMatches reports whether a gating list admits the requested value.
// An empty list or one containing "any" admits everything.
func listMatches(list []string, want string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == "any" || v == want {
			return true
		}
	}
	return false
}

// gateMatches reports whether a gated entry admits the requested level,
// biome, and slot. Level bounds are inclusive on both ends.
func gateMatches(g types.Gate, level int, biome, slot string) bool {
	if !listMatches(g.Biomes, biome) {
		return false
	}
	if !listMatches(g.Slots, slot) {
		return false
	}
	return g.MinLevel <= level && level <= g.MaxLevel
}

// mergeTags deduplicates and sorts the union of two tag lists. Sorting
// keeps records byte-identical across runs.
func mergeTags(a, b []string) []string {
	seen := map[string]bool{}
	merged := []string{}
	for _, t := range a {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range b {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	sort.Strings(merged)
	return merged
}
