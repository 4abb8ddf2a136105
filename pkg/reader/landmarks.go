package reader

import (
	"cmp"
	"path/filepath"
	"slices"
	"strconv"
)

// Location is one landmark location loaded back from disk, with the
// published names of the landmarks and groups it belongs to.
type Location struct {
	ID        int64
	X, Y, Z   float64
	Landmarks []string
	Groups    []string
}

// LandmarkReader exposes the landmarks section.
type LandmarkReader struct {
	locations []Location
}

func openLandmarks(dir string) (*LandmarkReader, error) {
	var raw map[string]struct {
		Groups    []string `json:"groups"`
		Landmarks []string `json:"landmarks"`
		X         float64  `json:"x"`
		Y         float64  `json:"y"`
		Z         float64  `json:"z"`
	}
	if err := readJSON(filepath.Join(dir, "locations.json"), &raw); err != nil {
		return nil, err
	}

	locs := make([]Location, 0, len(raw))
	for key, ent := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, err
		}
		locs = append(locs, Location{
			ID:        id,
			X:         ent.X,
			Y:         ent.Y,
			Z:         ent.Z,
			Landmarks: ent.Landmarks,
			Groups:    ent.Groups,
		})
	}
	slices.SortFunc(locs, func(a, b Location) int { return cmp.Compare(a.ID, b.ID) })
	return &LandmarkReader{locations: locs}, nil
}

// All returns every location in ID order.
func (r *LandmarkReader) All() []Location { return slices.Clone(r.locations) }

// ByLandmark returns the locations belonging to one published landmark
// name, in ID order.
func (r *LandmarkReader) ByLandmark(name string) []Location {
	var out []Location
	for _, loc := range r.locations {
		if slices.Contains(loc.Landmarks, name) {
			out = append(out, loc)
		}
	}
	return out
}

// ByGroup returns the locations belonging to one published group name, in
// ID order.
func (r *LandmarkReader) ByGroup(name string) []Location {
	var out []Location
	for _, loc := range r.locations {
		if slices.Contains(loc.Groups, name) {
			out = append(out, loc)
		}
	}
	return out
}
