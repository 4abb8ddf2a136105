// Package rename resolves the canonical (exported) name of every entity.
//
// A rename map starts from a user-supplied seed (original name to desired
// published name) and is filled to totality with identity entries as
// entities are discovered: callers progressively walk independent parts of
// the graph (annotations first, then per-neuron tags) and merge discoveries
// into one running map without clobbering earlier explicit renames. Before
// anything is written to disk the map must be total over every exported
// name; [Map.Validate] additionally rejects two originals mapped to one
// canonical name.
package rename

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Map maps original entity names to canonical exported names. Any name not
// explicitly renamed maps to itself once filled.
type Map map[string]string

// ConflictError is returned by [Map.Validate] when two distinct original
// names resolve to the same canonical name. Writing such a map would merge
// unrelated entities in the output, so the export is rejected rather than
// guessing.
type ConflictError struct {
	Canonical string   // the contested canonical name
	Originals []string // sorted original names mapping to it
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("rename conflict: %s all map to %q",
		strings.Join(e.Originals, ", "), e.Canonical)
}

// Fill returns a copy of m with an identity entry added for every candidate
// not already present as a key. Existing entries are preserved unchanged,
// including pass-through entries whose key is not a candidate: those remain
// valid for later fills. A nil m is treated as empty.
//
// Fill is idempotent: filling twice with the same candidates never changes
// the result of the first call.
func Fill(m Map, candidates []string) Map {
	out := make(Map, len(m)+len(candidates))
	maps.Copy(out, m)
	out.FillInPlace(candidates)
	return out
}

// FillInPlace adds identity entries to m for every candidate not already
// present. Use this accumulation mode when merging names discovered
// mid-traversal into one running map.
func (m Map) FillInPlace(candidates []string) {
	for _, c := range candidates {
		if _, ok := m[c]; !ok {
			m[c] = c
		}
	}
}

// Canonical returns the exported name for the given original. Names absent
// from the map resolve to themselves.
func (m Map) Canonical(name string) string {
	if out, ok := m[name]; ok {
		return out
	}
	return name
}

// Keys returns the original names in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Validate checks that no two original names share a canonical name.
// Fill alone can never introduce such a collision; it enters through the
// user-supplied seed, so this runs once per export before any writer.
// Returns a *ConflictError for the lexicographically first contested
// canonical name, or nil.
func (m Map) Validate() error {
	byCanonical := make(map[string][]string, len(m))
	for orig, canon := range m {
		byCanonical[canon] = append(byCanonical[canon], orig)
	}

	var conflicts []string
	for canon, origs := range byCanonical {
		if len(origs) > 1 {
			conflicts = append(conflicts, canon)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	slices.Sort(conflicts)
	canon := conflicts[0]
	origs := byCanonical[canon]
	slices.Sort(origs)
	return &ConflictError{Canonical: canon, Originals: origs}
}
