package catmaid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/flybrains/neuropub/pkg/cache"
	"github.com/flybrains/neuropub/pkg/graph"
	"github.com/flybrains/neuropub/pkg/skeleton"
)

// testServer serves canned responses for the endpoints the client hits.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/1/annotations/graph", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"nodes": [
				{"name": "root", "type": "annotation"},
				{"name": "child", "type": "annotation"},
				{"name": "neuron a", "type": "neuron"},
				{"name": "mesh", "type": "volume"}
			],
			"edges": [
				{"from": "root", "to": "child"},
				{"from": "child", "to": "neuron a"},
				{"from": "root", "to": "mesh"}
			]
		}`))
	})

	mux.HandleFunc("/1/skeletons/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[42, 7]`))
	})

	mux.HandleFunc("/1/neurons/by-name", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "neuron a" {
			w.Write([]byte(`{"skeleton_ids": [42]}`))
			return
		}
		w.Write([]byte(`{"skeleton_ids": []}`))
	})

	mux.HandleFunc("/1/skeletons/42/compact-detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			[
				[10, null, 3, 1.0, 2.0, 3.0, -1.0, 5],
				[11, 10, 3, 4.0, 5.0, 6.0, 2.5, 5]
			],
			[
				[11, 500, 1, 7.0, 8.0, 9.0],
				[10, 501, 0, 1.0, 1.0, 1.0]
			],
			{"soma": [10], "ends": [11]}
		]`))
	})
	mux.HandleFunc("/1/skeletons/42/neuron", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "neuron a", "annotations": ["child"]}`))
	})

	return httptest.NewServer(mux)
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Credentials{Server: srv.URL, ProjectID: 1}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewClient_RequiresServer(t *testing.T) {
	if _, err := NewClient(Credentials{}, Options{}); !errors.Is(err, ErrMissingServer) {
		t.Errorf("got %v, want ErrMissingServer", err)
	}
}

func TestAnnotationGraph(t *testing.T) {
	srv := testServer(t)
	defer srv.Close()
	c := testClient(t, srv)

	g, err := c.AnnotationGraph(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Fatalf("graph has %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node("neuron a"); n.Kind != graph.KindNeuron {
		t.Errorf("neuron a kind = %v", n.Kind)
	}
	if n, _ := g.Node("mesh"); n.Kind != graph.KindVolume {
		t.Errorf("mesh kind = %v", n.Kind)
	}
}

func TestAllSkeletonIDs(t *testing.T) {
	srv := testServer(t)
	defer srv.Close()
	c := testClient(t, srv)

	ids, err := c.AllSkeletonIDs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []int64{42, 7}) {
		t.Errorf("ids = %v", ids)
	}
}

func TestSkeletonIDsByName(t *testing.T) {
	srv := testServer(t)
	defer srv.Close()
	c := testClient(t, srv)

	ids, err := c.SkeletonIDsByName(context.Background(), []string{"neuron a", "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []int64{42}) {
		t.Errorf("ids = %v, want [42]", ids)
	}
}

func TestSkeleton_ParsesCompactDetail(t *testing.T) {
	srv := testServer(t)
	defer srv.Close()
	c := testClient(t, srv)

	s, err := c.Skeleton(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}

	if s.Name != "neuron a" {
		t.Errorf("name = %q", s.Name)
	}
	if !slices.Equal(s.Annotations, []string{"child"}) {
		t.Errorf("annotations = %v", s.Annotations)
	}
	if len(s.Nodes) != 2 {
		t.Fatalf("got %d nodes", len(s.Nodes))
	}
	root := s.Nodes[0]
	if root.ID != 10 || root.ParentID != skeleton.NoParent {
		t.Errorf("root = %+v, want ID 10 with no parent", root)
	}
	if root.Radius != skeleton.UnmeasuredRadius {
		t.Errorf("negative radius should map to the unmeasured sentinel, got %v", root.Radius)
	}
	if s.Nodes[1].ParentID != 10 || s.Nodes[1].Radius != 2.5 {
		t.Errorf("child = %+v", s.Nodes[1])
	}
	if len(s.Connectors) != 2 {
		t.Fatalf("got %d connectors", len(s.Connectors))
	}
	if !s.Connectors[0].IsInput || s.Connectors[1].IsInput {
		t.Errorf("connector relations decoded wrong: %+v", s.Connectors)
	}
	if !slices.Equal(s.Tags["soma"], []int64{10}) {
		t.Errorf("tags = %v", s.Tags)
	}
	if s.SomaID() != 10 {
		t.Errorf("SomaID = %d, want 10", s.SomaID())
	}
}

func TestSkeleton_TruncatedRowsFailCleanly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/skeletons/9/compact-detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[[10, null, 3]], [], {}]`))
	})
	mux.HandleFunc("/1/skeletons/8/compact-detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[], [[11, 500]], {}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := testClient(t, srv)
	ctx := context.Background()

	if _, err := c.Skeleton(ctx, 9); err == nil || !strings.Contains(err.Error(), "treenode row") {
		t.Errorf("truncated treenode row: got %v, want parse error", err)
	}
	if _, err := c.Skeleton(ctx, 8); err == nil || !strings.Contains(err.Error(), "connector row") {
		t.Errorf("truncated connector row: got %v, want parse error", err)
	}
}

func TestSkeleton_MemoizedCopiesAreIndependent(t *testing.T) {
	srv := testServer(t)
	defer srv.Close()
	c := testClient(t, srv)
	ctx := context.Background()

	first, err := c.Skeleton(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	first.Name = "mutated"
	first.Nodes[0].X = 999
	first.Tags["soma"][0] = 999

	second, err := c.Skeleton(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if second.Name != "neuron a" || second.Nodes[0].X != 1.0 || second.Tags["soma"][0] != 10 {
		t.Error("mutating one returned skeleton leaked into the memoized copy")
	}
}

func TestGet_UsesResponseCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClient(Credentials{Server: srv.URL, ProjectID: 1}, Options{Backend: backend})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	for range 3 {
		if _, err := c.AllSkeletonIDs(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (cached)", hits.Load())
	}
}

func TestGet_RefreshBypassesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClient(Credentials{Server: srv.URL, ProjectID: 1}, Options{Backend: backend, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	for range 2 {
		if _, err := c.AllSkeletonIDs(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2 (refresh)", hits.Load())
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{code: 200, want: nil},
		{code: 404, want: ErrNotFound},
		{code: 401, want: ErrUnauthorized},
		{code: 403, want: ErrUnauthorized},
		{code: 500, want: ErrNetwork},
		{code: 418, want: ErrNetwork},
	}
	for _, tt := range tests {
		err := checkStatus(tt.code)
		if tt.want == nil {
			if err != nil {
				t.Errorf("checkStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.want)
		}
	}
}

func TestDoRequest_SendsToken(t *testing.T) {
	var header atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header.Store(r.Header.Get("X-Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := NewClient(Credentials{Server: srv.URL, ProjectID: 1, APIToken: "secret"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.AllSkeletonIDs(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := header.Load(); got != "Token secret" {
		t.Errorf("X-Authorization = %q", got)
	}
}

func TestRetry_RecoversFromServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	c, err := NewClient(Credentials{Server: srv.URL, ProjectID: 1}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ids, err := c.AllSkeletonIDs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []int64{1}) {
		t.Errorf("ids = %v", ids)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestRetry_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(Credentials{Server: srv.URL, ProjectID: 1}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.AllSkeletonIDs(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (no retry)", hits.Load())
	}
}
