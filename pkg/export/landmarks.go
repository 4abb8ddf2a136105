package export

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/flybrains/neuropub/pkg/catmaid"
	"github.com/flybrains/neuropub/pkg/rename"
	"github.com/flybrains/neuropub/pkg/selection"
)

// locationEntry is one value in landmarks/locations.json, keyed by
// location ID. The same physical point can belong to several landmarks
// and groups.
type locationEntry struct {
	Groups    []string `json:"groups"`
	Landmarks []string `json:"landmarks"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Z         float64  `json:"z"`
}

// exportLandmarks writes landmarks/locations.json: every location owned by
// an in-scope landmark or group, annotated with the published names of the
// landmarks and groups it belongs to.
func (e *Exporter) exportLandmarks(ctx context.Context, outDir string, sum *Summary) error {
	sect := e.cfg.Landmarks
	if !sect.Enabled {
		e.logger.Debug("landmarks section absent, skipping")
		return nil
	}

	landmarks, err := e.src.Landmarks(ctx)
	if err != nil {
		return fmt.Errorf("list landmarks: %w", err)
	}
	groups, err := e.src.LandmarkGroups(ctx)
	if err != nil {
		return fmt.Errorf("list landmark groups: %w", err)
	}

	landmarks = filterByScope(landmarks, sect.NameScope(), sect.Rename,
		func(l catmaid.Landmark) string { return l.Name })
	groups = filterByScope(groups, sect.GroupScope(), sect.GroupRename,
		func(g catmaid.LandmarkGroup) string { return g.Name })

	lmNames := make([]string, 0, len(landmarks))
	for _, l := range landmarks {
		lmNames = append(lmNames, l.Name)
	}
	lmRenames := rename.Fill(sect.Rename, lmNames)
	if err := lmRenames.Validate(); err != nil {
		return fmt.Errorf("landmarks: %w", err)
	}
	grpNames := make([]string, 0, len(groups))
	for _, g := range groups {
		grpNames = append(grpNames, g.Name)
	}
	grpRenames := rename.Fill(sect.GroupRename, grpNames)
	if err := grpRenames.Validate(); err != nil {
		return fmt.Errorf("landmark groups: %w", err)
	}

	entries := make(map[string]*locationEntry)
	touch := func(loc catmaid.Location) *locationEntry {
		key := strconv.FormatInt(loc.ID, 10)
		ent, ok := entries[key]
		if !ok {
			ent = &locationEntry{
				Groups:    []string{},
				Landmarks: []string{},
				X:         loc.X, Y: loc.Y, Z: loc.Z,
			}
			entries[key] = ent
		}
		return ent
	}
	for _, l := range landmarks {
		canonical := lmRenames.Canonical(l.Name)
		for _, loc := range l.Locations {
			ent := touch(loc)
			ent.Landmarks = append(ent.Landmarks, canonical)
		}
	}
	for _, g := range groups {
		canonical := grpRenames.Canonical(g.Name)
		for _, loc := range g.Locations {
			ent := touch(loc)
			ent.Groups = append(ent.Groups, canonical)
		}
	}
	for _, ent := range entries {
		slices.Sort(ent.Landmarks)
		ent.Landmarks = slices.Compact(ent.Landmarks)
		slices.Sort(ent.Groups)
		ent.Groups = slices.Compact(ent.Groups)
	}
	if len(entries) == 0 {
		e.logger.Debug("no landmark locations selected, skipping")
		return nil
	}

	dir, err := ensureDir(outDir, "landmarks")
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "locations.json"), entries); err != nil {
		return err
	}
	if err := writeReadme(dir, landmarksReadme); err != nil {
		return err
	}

	sum.Locations = len(entries)
	e.logger.Info("exported landmark locations", "count", len(entries))
	return nil
}

// filterByScope keeps the items selected by a tri-state name scope plus
// the keys of its rename table.
func filterByScope[T any](items []T, scope selection.Scope, seed rename.Map, name func(T) string) []T {
	if scope.IsAll() {
		return items
	}
	wanted := mapset.NewThreadUnsafeSet[string]()
	for _, n := range scope.Names() {
		wanted.Add(n)
	}
	for _, n := range seed.Keys() {
		wanted.Add(n)
	}
	return slices.DeleteFunc(items, func(it T) bool {
		return !wanted.Contains(name(it))
	})
}
