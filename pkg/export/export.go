// Package export orchestrates one export run: it pulls raw data from the
// server, resolves scopes and canonical names through the selection engine,
// and writes the portable dataset directory.
//
// A run is strictly sequential: the annotation scope is resolved (and every
// rename validated) before any file is written, because annotation renames
// feed into neuron metadata. The output directory must not pre-exist and is
// removed again if the run fails partway, so a dataset on disk is always
// complete.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/flybrains/neuropub/pkg/catmaid"
	"github.com/flybrains/neuropub/pkg/config"
	"github.com/flybrains/neuropub/pkg/graph"
	"github.com/flybrains/neuropub/pkg/rename"
)

// ErrOutDirExists is returned when the output directory already exists.
// Exports never overwrite: a partially replaced dataset would be worse
// than no dataset.
var ErrOutDirExists = errors.New("output directory already exists")

// Source is the remote data the exporter consumes. *catmaid.Client
// implements it; tests substitute fakes.
type Source interface {
	AnnotationGraph(ctx context.Context) (*graph.Graph, error)
	AllSkeletonIDs(ctx context.Context) ([]int64, error)
	SkeletonIDsByName(ctx context.Context, names []string) ([]int64, error)
	SkeletonIDsByAnnotation(ctx context.Context, annotations []string) ([]int64, error)
	Skeleton(ctx context.Context, id int64) (*catmaid.Skeleton, error)
	Volumes(ctx context.Context) ([]catmaid.VolumeInfo, error)
	Volume(ctx context.Context, id int64) (*catmaid.Volume, error)
	Landmarks(ctx context.Context) ([]catmaid.Landmark, error)
	LandmarkGroups(ctx context.Context) ([]catmaid.LandmarkGroup, error)
}

// Summary reports what one run produced.
type Summary struct {
	RunID      string
	Timestamp  time.Time
	ConfigHash string
	OutDir     string

	Annotations int // exported annotation count (0 = section skipped)
	Neurons     int
	Volumes     int
	Locations   int // landmark locations
}

// Exporter runs exports for one configuration against one source.
type Exporter struct {
	src    Source
	cfg    *config.Config
	logger *log.Logger
}

// New creates an Exporter. A nil logger discards output.
func New(src Source, cfg *config.Config, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{src: src, cfg: cfg, logger: logger}
}

// Run executes one export into outDir, which must not exist yet.
// On failure the directory is removed so no partial dataset persists.
func (e *Exporter) Run(ctx context.Context, outDir string) (*Summary, error) {
	if _, err := os.Stat(outDir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrOutDirExists, outDir)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	sum, err := e.run(ctx, outDir)
	if err != nil {
		_ = os.RemoveAll(outDir)
		return nil, err
	}
	return sum, nil
}

func (e *Exporter) run(ctx context.Context, outDir string) (*Summary, error) {
	sum := &Summary{
		RunID:      uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		ConfigHash: e.cfg.Hash(),
		OutDir:     outDir,
	}

	// User-supplied rename seeds can collide before any filling happens;
	// reject them before fetching anything.
	if err := e.validateSeeds(); err != nil {
		return nil, err
	}

	e.logger.Debug("fetching annotation graph")
	g, err := e.src.AnnotationGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch annotation graph: %w", err)
	}
	e.logger.Debug("annotation graph fetched", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	annRenames, err := e.exportAnnotations(g, outDir, sum)
	if err != nil {
		return nil, err
	}
	if err := e.exportSkeletons(ctx, g, annRenames, outDir, sum); err != nil {
		return nil, err
	}
	if err := e.exportVolumes(ctx, g, outDir, sum); err != nil {
		return nil, err
	}
	if err := e.exportLandmarks(ctx, outDir, sum); err != nil {
		return nil, err
	}

	if err := writeMetadata(outDir, e.cfg, sum); err != nil {
		return nil, err
	}
	if err := writeRootReadme(outDir, e.cfg, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// validateSeeds rejects rename seeds that map two originals to one target.
func (e *Exporter) validateSeeds() error {
	seeds := map[string]rename.Map{
		"annotations": e.cfg.Annotations.Rename,
		"skeletons":   e.cfg.Skeletons.Rename,
		"tags":        e.cfg.Skeletons.Tags.Rename,
		"volumes":     e.cfg.Volumes.Rename,
		"landmarks":   e.cfg.Landmarks.Rename,
		"groups":      e.cfg.Landmarks.GroupRename,
	}
	for section, seed := range seeds {
		if err := seed.Validate(); err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
	}
	return nil
}

// writeJSON writes v as pretty-printed JSON. encoding/json emits map keys
// in sorted order, which the byte-for-byte determinism of the annotation
// export relies on.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := newSortedEncoder(f)
	return enc.Encode(v)
}

// ensureDir creates a section subdirectory under the export root.
func ensureDir(outDir string, parts ...string) (string, error) {
	dir := filepath.Join(append([]string{outDir}, parts...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
