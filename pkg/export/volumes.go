package export

import (
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
)

// exportVolumes writes one ASCII STL mesh per volume under volumes/, plus
// a names.tsv mapping each file back to the published volume name.
func (e *Exporter) exportVolumes(ctx context.Context, g *graph.Graph, outDir string, sum *Summary) error {
	sect := e.cfg.Volumes
	if !sect.Enabled {
		e.logger.Debug("volumes section absent, skipping")
		return nil
	}

	infos, err := e.src.Volumes(ctx)
	if err != nil {
		return fmt.Errorf("list volumes: %w", err)
	}

	scope := sect.NameScope()
	if !scope.IsAll() {
		wanted := mapset.NewThreadUnsafeSet[string]()
		for _, n := range scope.Names() {
			wanted.Add(n)
		}
		for _, n := range sect.Rename.Keys() {
			wanted.Add(n)
		}
		if len(sect.Annotated) > 0 {
			sub := selection.Typed(g, sect.Annotated, graph.KindVolume)
			for _, n := range selection.TypedIDs(sub, graph.KindVolume) {
				wanted.Add(n)
			}
		}
		infos = slices.DeleteFunc(infos, func(v catmaid.VolumeInfo) bool {
			return !wanted.Contains(v.Name)
		})
	}

	if len(infos) == 0 {
		e.logger.Debug("no volumes selected, skipping")
		return nil
	}

	names := make([]string, 0, len(infos))
	for _, v := range infos {
		names = append(names, v.Name)
	}
	renames := rename.Fill(sect.Rename, names)
	if err := renames.Validate(); err != nil {
		return fmt.Errorf("volumes: %w", err)
	}

	dir, err := ensureDir(outDir, "volumes")
	if err != nil {
		return err
	}

	type row struct{ file, name string }
	rows := make([]row, 0, len(infos))
	for _, info := range infos {
		vol, err := e.src.Volume(ctx, info.ID)
		if err != nil {
			return fmt.Errorf("fetch volume %d: %w", info.ID, err)
		}
		canonical := renames.Canonical(info.Name)
		file := strconv.FormatInt(info.ID, 10) + ".stl"
		if err := writeSTL(filepath.Join(dir, file), canonical, vol.Vertices, vol.Faces); err != nil {
			return fmt.Errorf("volume %q: %w", canonical, err)
		}
		rows = append(rows, row{file: file, name: canonical})
	}

	slices.SortFunc(rows, func(a, b row) int { return strings.Compare(a.file, b.file) })
	var b strings.Builder
	b.WriteString("filename\tvolume_name\n")
	for _, r := range rows {
		b.WriteString(r.file)
		b.WriteByte('\t')
		b.WriteString(r.name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "names.tsv"), []byte(b.String()), 0o644); err != nil {
		return err
	}
	if err := writeReadme(dir, volumesReadme); err != nil {
		return err
	}

	sum.Volumes = len(rows)
	e.logger.Info("exported volumes", "count", len(rows))
	return nil
}
