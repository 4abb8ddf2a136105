package export

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/flybrains/neuropub/pkg/catmaid"
	"github.com/flybrains/neuropub/pkg/graph"
	"github.com/flybrains/neuropub/pkg/rename"
	"github.com/flybrains/neuropub/pkg/selection"
	"github.com/flybrains/neuropub/pkg/skeleton"
)

// neuronMeta is the shape of neurons/<id>/metadata.json. Field order is
// the serialized key order.
type neuronMeta struct {
	Annotations []string `json:"annotations"`
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	SomaID      *int64   `json:"soma_id"`
}

// exportSkeletons writes one directory per neuron under neurons/.
// Selection combines three sources: explicit names, rename keys, and
// neurons reachable from the annotated roots in the annotation graph.
func (e *Exporter) exportSkeletons(ctx context.Context, g *graph.Graph, annRenames rename.Map, outDir string, sum *Summary) error {
	sect := e.cfg.Skeletons
	if !sect.Enabled {
		e.logger.Debug("skeletons section absent, skipping")
		return nil
	}

	ids, err := e.selectSkeletonIDs(ctx, g)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		e.logger.Debug("no skeletons selected, skipping")
		return nil
	}

	// Fetch everything up front so neuron renames can be filled and
	// validated over the complete name set before any file is written.
	skels := make([]*catmaid.Skeleton, 0, len(ids))
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		sk, err := e.src.Skeleton(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch skeleton %d: %w", id, err)
		}
		skels = append(skels, sk)
		names = append(names, sk.Name)
	}
	renames := rename.Fill(sect.Rename, names)
	if err := renames.Validate(); err != nil {
		return fmt.Errorf("skeletons: %w", err)
	}

	dir, err := ensureDir(outDir, "neurons")
	if err != nil {
		return err
	}
	for _, sk := range skels {
		if err := e.writeNeuron(dir, sk, renames, annRenames); err != nil {
			return fmt.Errorf("neuron %d: %w", sk.ID, err)
		}
	}
	if err := writeReadme(dir, neuronsReadme); err != nil {
		return err
	}

	sum.Neurons = len(skels)
	e.logger.Info("exported neurons", "count", len(skels))
	return nil
}

// selectSkeletonIDs resolves the configured scope to a sorted, deduplicated
// list of skeleton IDs.
func (e *Exporter) selectSkeletonIDs(ctx context.Context, g *graph.Graph) ([]int64, error) {
	sect := e.cfg.Skeletons
	scope := sect.NameScope()

	var ids []int64
	if scope.IsAll() {
		all, err := e.src.AllSkeletonIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list skeletons: %w", err)
		}
		ids = all
	} else {
		nameSet := mapset.NewThreadUnsafeSet[string]()
		for _, n := range scope.Names() {
			nameSet.Add(n)
		}
		for _, n := range sect.Rename.Keys() {
			nameSet.Add(n)
		}
		if len(sect.Annotated) > 0 {
			sub := selection.Typed(g, sect.Annotated, graph.KindNeuron)
			for _, n := range selection.TypedIDs(sub, graph.KindNeuron) {
				nameSet.Add(n)
			}
			byAnn, err := e.src.SkeletonIDsByAnnotation(ctx, sect.Annotated)
			if err != nil {
				return nil, fmt.Errorf("resolve annotated skeletons: %w", err)
			}
			ids = append(ids, byAnn...)
		}
		names := nameSet.ToSlice()
		slices.Sort(names)
		if len(names) > 0 {
			byName, err := e.src.SkeletonIDsByName(ctx, names)
			if err != nil {
				return nil, fmt.Errorf("resolve skeleton names: %w", err)
			}
			ids = append(ids, byName...)
		}
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (e *Exporter) writeNeuron(neuronsDir string, sk *catmaid.Skeleton, renames, annRenames rename.Map) error {
	dir := filepath.Join(neuronsDir, strconv.FormatInt(sk.ID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	meta := neuronMeta{
		Annotations: filterAnnotations(sk.Annotations, annRenames),
		ID:          sk.ID,
		Name:        renames.Canonical(sk.Name),
	}
	if soma := sk.SomaID(); soma != skeleton.NoParent {
		meta.SomaID = &soma
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return err
	}

	tags, err := e.filterTags(sk.Tags)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "tags.json"), tags); err != nil {
		return err
	}

	if err := writeNodesTSV(filepath.Join(dir, "nodes.tsv"), sk); err != nil {
		return err
	}
	return writeConnectorsTSV(filepath.Join(dir, "connectors.tsv"), sk)
}

// filterAnnotations keeps the annotations that survived annotation scoping
// and maps them to their published names.
func filterAnnotations(anns []string, renames rename.Map) []string {
	out := make([]string, 0, len(anns))
	for _, a := range anns {
		if canonical, ok := renames[a]; ok {
			out = append(out, canonical)
		}
	}
	slices.Sort(out)
	return out
}

// filterTags applies the tag scope and rename table to one neuron's tags.
// An unscoped config keeps every tag; otherwise only tags named by the
// scope or the rename table survive.
func (e *Exporter) filterTags(tags map[string][]int64) (map[string][]int64, error) {
	scope := e.cfg.Skeletons.Tags.NameScope()

	var candidates []string
	if scope.IsAll() {
		for name := range tags {
			candidates = append(candidates, name)
		}
		slices.Sort(candidates)
	} else {
		candidates = scope.Names()
	}
	renames := rename.Fill(e.cfg.Skeletons.Tags.Rename, candidates)
	if err := renames.Validate(); err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}

	out := make(map[string][]int64, len(tags))
	for name, nodeIDs := range tags {
		canonical, ok := renames[name]
		if !ok {
			continue
		}
		sorted := slices.Clone(nodeIDs)
		slices.Sort(sorted)
		out[canonical] = sorted
	}
	return out, nil
}

// writeNodesTSV writes the treenode table in deterministic topological
// order: parents before children, siblings sorted by ID.
func writeNodesTSV(path string, sk *catmaid.Skeleton) error {
	roots := skeleton.Roots(sk.Nodes)
	ordered, err := skeleton.TopoOrder(sk.Nodes, roots, skeleton.SiblingSorted)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("node_id\tparent_id\tx\ty\tz\tradius\n")
	for _, n := range ordered {
		b.WriteString(strconv.FormatInt(n.ID, 10))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatInt(n.ParentID, 10))
		b.WriteByte('\t')
		b.WriteString(formatCoord(n.X))
		b.WriteByte('\t')
		b.WriteString(formatCoord(n.Y))
		b.WriteByte('\t')
		b.WriteString(formatCoord(n.Z))
		b.WriteByte('\t')
		b.WriteString(formatCoord(n.Radius))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// writeConnectorsTSV writes the connector table sorted by treenode then
// connector ID.
func writeConnectorsTSV(path string, sk *catmaid.Skeleton) error {
	conns := slices.Clone(sk.Connectors)
	slices.SortFunc(conns, func(a, b catmaid.Connector) int {
		if c := cmp.Compare(a.NodeID, b.NodeID); c != 0 {
			return c
		}
		return cmp.Compare(a.ConnectorID, b.ConnectorID)
	})

	var b strings.Builder
	b.WriteString("node_id\tconnector_id\tis_input\tx\ty\tz\n")
	for _, c := range conns {
		isInput := "0"
		if c.IsInput {
			isInput = "1"
		}
		b.WriteString(strconv.FormatInt(c.NodeID, 10))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatInt(c.ConnectorID, 10))
		b.WriteByte('\t')
		b.WriteString(isInput)
		b.WriteByte('\t')
		b.WriteString(formatCoord(c.X))
		b.WriteByte('\t')
		b.WriteString(formatCoord(c.Y))
		b.WriteByte('\t')
		b.WriteString(formatCoord(c.Z))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
