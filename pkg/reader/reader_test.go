package reader

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/flybrains/neuropub/pkg/catmaid"
	"github.com/flybrains/neuropub/pkg/config"
	"github.com/flybrains/neuropub/pkg/export"
	"github.com/flybrains/neuropub/pkg/graph"
	"github.com/flybrains/neuropub/pkg/skeleton"
)

// roundTripSource backs an export whose output the reader tests parse.
type roundTripSource struct{}

func (roundTripSource) AnnotationGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.New()
	for _, id := range []string{"root", "child"} {
		if err := g.AddNode(graph.Node{ID: id, Kind: graph.KindAnnotation}); err != nil {
			return nil, err
		}
	}
	if err := g.AddNode(graph.Node{ID: "neuron a", Kind: graph.KindNeuron}); err != nil {
		return nil, err
	}
	for _, e := range [][2]string{{"root", "child"}, {"child", "neuron a"}} {
		if err := g.AddEdge(graph.Edge{From: e[0], To: e[1]}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (roundTripSource) AllSkeletonIDs(ctx context.Context) ([]int64, error) {
	return []int64{42}, nil
}

func (roundTripSource) SkeletonIDsByName(ctx context.Context, names []string) ([]int64, error) {
	if slices.Contains(names, "neuron a") {
		return []int64{42}, nil
	}
	return nil, nil
}

func (roundTripSource) SkeletonIDsByAnnotation(ctx context.Context, annotations []string) ([]int64, error) {
	return []int64{42}, nil
}

func (roundTripSource) Skeleton(ctx context.Context, id int64) (*catmaid.Skeleton, error) {
	return &catmaid.Skeleton{
		ID:          42,
		Name:        "neuron a",
		Annotations: []string{"child"},
		Nodes: []skeleton.Node{
			{ID: 10, ParentID: skeleton.NoParent, X: 1, Y: 2, Z: 3, Radius: 5},
			{ID: 11, ParentID: 10, X: 4, Y: 5, Z: 6, Radius: skeleton.UnmeasuredRadius},
		},
		Connectors: []catmaid.Connector{
			{NodeID: 11, ConnectorID: 500, IsInput: true, X: 7, Y: 8, Z: 9},
		},
		Tags: map[string][]int64{"soma": {10}},
	}, nil
}

func (roundTripSource) Volumes(ctx context.Context) ([]catmaid.VolumeInfo, error) {
	return []catmaid.VolumeInfo{{ID: 1, Name: "mesh vol"}}, nil
}

func (roundTripSource) Volume(ctx context.Context, id int64) (*catmaid.Volume, error) {
	return &catmaid.Volume{
		ID:       1,
		Name:     "mesh vol",
		Vertices: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    [][3]int{{0, 1, 2}},
	}, nil
}

func (roundTripSource) Landmarks(ctx context.Context) ([]catmaid.Landmark, error) {
	return []catmaid.Landmark{
		{ID: 1, Name: "lm", Locations: []catmaid.Location{{ID: 100, X: 1, Y: 2, Z: 3}}},
	}, nil
}

func (roundTripSource) LandmarkGroups(ctx context.Context) ([]catmaid.LandmarkGroup, error) {
	return []catmaid.LandmarkGroup{
		{ID: 5, Name: "grp", Members: []int64{1}, Locations: []catmaid.Location{{ID: 100, X: 1, Y: 2, Z: 3}}},
	}, nil
}

// exportDataset writes a full dataset once per test binary run.
func exportDataset(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{
		Project:     config.Project{ServerURL: "https://example.org", ProjectID: 1, Units: "nm"},
		Annotations: config.Section{Enabled: true, Annotated: []string{"root"}, Names: []string{}},
		Skeletons:   config.Skeletons{Enabled: true, Annotated: []string{"root"}, Names: []string{}},
		Volumes:     config.Section{Enabled: true},
		Landmarks:   config.Landmarks{Enabled: true},
	}
	outDir := filepath.Join(t.TempDir(), "out")
	if _, err := export.New(roundTripSource{}, cfg, nil).Run(context.Background(), outDir); err != nil {
		t.Fatal(err)
	}
	return outDir
}

func TestOpen_Metadata(t *testing.T) {
	r, err := Open(exportDataset(t))
	if err != nil {
		t.Fatal(err)
	}
	meta := r.Metadata()
	if meta.Tool != "neuropub" {
		t.Errorf("tool = %q", meta.Tool)
	}
	if meta.Units != "nm" {
		t.Errorf("units = %q", meta.Units)
	}
	if meta.RunID == "" {
		t.Error("run id missing")
	}
}

func TestOpen_NotADataset(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("opening a missing directory should fail")
	}
}

func TestAnnotations_RoundTrip(t *testing.T) {
	r, err := Open(exportDataset(t))
	if err != nil {
		t.Fatal(err)
	}
	anns, err := r.Annotations()
	if err != nil {
		t.Fatal(err)
	}
	if got := anns.Names(); !slices.Equal(got, []string{"child", "root"}) {
		t.Errorf("names = %v", got)
	}
	kids, ok := anns.Children("root")
	if !ok || !slices.Equal(kids, []string{"child"}) {
		t.Errorf("Children(root) = %v, %v", kids, ok)
	}
	if _, ok := anns.Children("ghost"); ok {
		t.Error("unknown annotation should report not found")
	}

	g, err := anns.Graph()
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("graph = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestNeurons_RoundTrip(t *testing.T) {
	r, err := Open(exportDataset(t))
	if err != nil {
		t.Fatal(err)
	}
	neurons, err := r.Neurons()
	if err != nil {
		t.Fatal(err)
	}
	if got := neurons.IDs(); !slices.Equal(got, []int64{42}) {
		t.Fatalf("IDs = %v", got)
	}

	n, err := neurons.Get(42)
	if err != nil {
		t.Fatal(err)
	}
	if n.Name != "neuron a" || n.ID != 42 {
		t.Errorf("neuron = %+v", n)
	}
	if n.SomaID != 10 {
		t.Errorf("soma = %d, want 10", n.SomaID)
	}
	if len(n.Nodes) != 2 || n.Nodes[0].ID != 10 || n.Nodes[1].ParentID != 10 {
		t.Errorf("nodes = %+v", n.Nodes)
	}
	if n.Nodes[1].Radius != skeleton.UnmeasuredRadius {
		t.Errorf("radius sentinel lost: %v", n.Nodes[1].Radius)
	}
	if len(n.Connectors) != 1 || !n.Connectors[0].IsInput || n.Connectors[0].ConnectorID != 500 {
		t.Errorf("connectors = %+v", n.Connectors)
	}
	if !slices.Equal(n.Tags["soma"], []int64{10}) {
		t.Errorf("tags = %v", n.Tags)
	}

	byName, err := neurons.GetByName("neuron a")
	if err != nil {
		t.Fatal(err)
	}
	if byName.ID != 42 {
		t.Errorf("GetByName returned neuron %d", byName.ID)
	}
	if _, err := neurons.GetByName("ghost"); err == nil {
		t.Error("unknown name should fail")
	}

	byAnn, err := neurons.GetByAnnotation("child")
	if err != nil {
		t.Fatal(err)
	}
	if len(byAnn) != 1 || byAnn[0].ID != 42 {
		t.Errorf("GetByAnnotation = %+v", byAnn)
	}
}

func TestVolumes_RoundTrip(t *testing.T) {
	r, err := Open(exportDataset(t))
	if err != nil {
		t.Fatal(err)
	}
	vols, err := r.Volumes()
	if err != nil {
		t.Fatal(err)
	}
	if got := vols.Names(); !slices.Equal(got, []string{"mesh vol"}) {
		t.Fatalf("names = %v", got)
	}

	v, err := vols.Get("mesh vol")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Vertices) != 3 {
		t.Errorf("got %d vertices, want 3 (shared vertices merged)", len(v.Vertices))
	}
	if len(v.Faces) != 1 {
		t.Errorf("got %d faces, want 1", len(v.Faces))
	}
	// The triangle's vertex set survives the round trip.
	want := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, wv := range want {
		if !slices.Contains(v.Vertices, wv) {
			t.Errorf("vertex %v missing from %v", wv, v.Vertices)
		}
	}

	if _, err := vols.Get("ghost"); err == nil {
		t.Error("unknown volume should fail")
	}
}

func TestLandmarks_RoundTrip(t *testing.T) {
	r, err := Open(exportDataset(t))
	if err != nil {
		t.Fatal(err)
	}
	lms, err := r.Landmarks()
	if err != nil {
		t.Fatal(err)
	}
	all := lms.All()
	if len(all) != 1 {
		t.Fatalf("locations = %+v", all)
	}
	loc := all[0]
	if loc.ID != 100 || loc.X != 1 || loc.Y != 2 || loc.Z != 3 {
		t.Errorf("location = %+v", loc)
	}
	if !slices.Equal(loc.Landmarks, []string{"lm"}) || !slices.Equal(loc.Groups, []string{"grp"}) {
		t.Errorf("memberships = %+v", loc)
	}
	if got := lms.ByLandmark("lm"); len(got) != 1 {
		t.Errorf("ByLandmark = %+v", got)
	}
	if got := lms.ByGroup("ghost"); len(got) != 0 {
		t.Errorf("ByGroup(ghost) = %+v", got)
	}
}

func TestAnnotationGraph_MergesNeurons(t *testing.T) {
	r, err := Open(exportDataset(t))
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.AnnotationGraph()
	if err != nil {
		t.Fatal(err)
	}
	// Annotations root and child plus the neuron node.
	if g.NodeCount() != 3 {
		t.Fatalf("nodes = %v", g.NodeIDs())
	}
	n, ok := g.Node("neuron a")
	if !ok || n.Kind != graph.KindNeuron {
		t.Errorf("neuron node = %+v, %v", n, ok)
	}
	if got := g.Successors("child"); !slices.Equal(got, []string{"neuron a"}) {
		t.Errorf("Successors(child) = %v", got)
	}
}

func TestMissingSection(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Volumes(); !os.IsNotExist(err) {
		t.Errorf("missing section should surface os.IsNotExist, got %v", err)
	}
}
