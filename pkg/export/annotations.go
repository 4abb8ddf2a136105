package export

import (
	"fmt"
	"path/filepath"

	"github.com/flybrains/neuropub/pkg/graph"
	"github.com/flybrains/neuropub/pkg/rename"
	"github.com/flybrains/neuropub/pkg/selection"
)

// exportAnnotations writes annotations/annotation_graph.json and returns
// the filled annotation rename map, which the skeleton export uses to
// filter and rename per-neuron annotations. When the section is disabled
// the returned map is empty and downstream neuron metadata carries no
// annotations.
func (e *Exporter) exportAnnotations(g *graph.Graph, outDir string, sum *Summary) (rename.Map, error) {
	sect := e.cfg.Annotations
	if !sect.Enabled {
		e.logger.Debug("annotations section absent, skipping")
		return rename.Map{}, nil
	}

	children, renames := selection.Annotations(g, sect.Annotated, sect.NameScope(), sect.Rename)
	if err := renames.Validate(); err != nil {
		return nil, fmt.Errorf("annotations: %w", err)
	}
	if len(children) == 0 {
		e.logger.Debug("no annotations selected, skipping")
		return renames, nil
	}

	dir, err := ensureDir(outDir, "annotations")
	if err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(dir, "annotation_graph.json"), children); err != nil {
		return nil, err
	}
	if err := writeReadme(dir, annotationsReadme); err != nil {
		return nil, err
	}

	sum.Annotations = len(children)
	e.logger.Info("exported annotations", "count", len(children))
	return renames, nil
}
