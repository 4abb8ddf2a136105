package catmaid

import (
	"slices"

	"github.com/flybrains/neuropub/pkg/skeleton"
)

// Skeleton holds one neuron as fetched from the server: its treenodes,
// connector links, node tags, and metadata.
type Skeleton struct {
	ID          int64
	Name        string
	Annotations []string           // annotation names applied to the neuron
	Nodes       []skeleton.Node    // treenodes in server order
	Connectors  []Connector        // synaptic links, in server order
	Tags        map[string][]int64 // tag -> treenode IDs
}

// Connector is a synaptic link between a treenode and a connector entity.
type Connector struct {
	NodeID      int64
	ConnectorID int64
	IsInput     bool // true for postsynaptic (input), false for presynaptic
	X, Y, Z     float64
}

// SomaID returns the treenode ID tagged "soma", or NoParent if the soma is
// not labeled. When several nodes carry the tag the lowest ID wins, so the
// result is stable.
func (s *Skeleton) SomaID() int64 {
	ids := s.Tags["soma"]
	if len(ids) == 0 {
		return skeleton.NoParent
	}
	return slices.Min(ids)
}

// Clone returns a deep copy of the skeleton. The client's memoization
// returns clones so cached skeletons cannot be mutated through aliases.
func (s *Skeleton) Clone() *Skeleton {
	out := &Skeleton{
		ID:          s.ID,
		Name:        s.Name,
		Annotations: slices.Clone(s.Annotations),
		Nodes:       slices.Clone(s.Nodes),
		Connectors:  slices.Clone(s.Connectors),
		Tags:        make(map[string][]int64, len(s.Tags)),
	}
	for tag, ids := range s.Tags {
		out.Tags[tag] = slices.Clone(ids)
	}
	return out
}

// VolumeInfo identifies a volume without its mesh.
type VolumeInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Volume is a volumetric region of interest as a triangle mesh.
type Volume struct {
	ID       int64
	Name     string
	Vertices [][3]float64
	Faces    [][3]int
}

// Location is a point in space referenced by landmarks and groups.
// Location IDs are shared: the same location can belong to several
// landmarks and groups.
type Location struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Landmark is a named point of interest with one or more locations.
type Landmark struct {
	ID        int64
	Name      string
	Locations []Location
}

// LandmarkGroup is a named collection of landmarks with its own location
// set. Not all of a member landmark's locations necessarily belong to the
// group.
type LandmarkGroup struct {
	ID        int64
	Name      string
	Members   []int64 // landmark IDs
	Locations []Location
}
