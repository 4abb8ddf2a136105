package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flybrains/neuropub/pkg/config"
)

const annotationsReadme = `# Annotations

## Files

### annotation_graph.json

A JSON object mapping each exported annotation to the list of exported
annotations it annotates (its children in the annotation graph). Names are
the published names: any renames configured for the export have already
been applied. Keys and list entries are sorted.
`

const neuronsReadme = `# Neurons

One directory per neuron, named by skeleton ID.

## Files

### <id>/metadata.json

Neuron ID, published name, exported annotations (sorted), and the treenode
ID of the soma ("soma_id", null when no node is tagged "soma").

### <id>/nodes.tsv

Tab separated treenode table with columns node_id, parent_id, x, y, z,
radius. Rows are in topological order: every parent precedes its children
and siblings appear in ascending ID order. A parent_id of -1 marks a root;
a radius of -1 means unmeasured.

### <id>/connectors.tsv

Tab separated connector table with columns node_id, connector_id,
is_input, x, y, z. is_input is 1 where the neuron is postsynaptic and 0
where it is presynaptic. Rows are sorted by node_id, then connector_id.

### <id>/tags.json

A JSON object mapping each exported tag (published name) to the sorted
list of treenode IDs carrying it.
`

const volumesReadme = `# Volumes

## Files

### <id>.stl

One ASCII STL triangle mesh per volume, named by the volume's server ID,
in the coordinate space of the dataset.

### names.tsv

Tab separated table with columns filename, volume_name, mapping each STL
file to the published volume name.
`

const landmarksReadme = `# Landmarks

## Files

### locations.json

A JSON object keyed by location ID. Each value has the location's x, y, z
coordinates plus the sorted published names of the landmarks and landmark
groups it belongs to. The same location can appear in several landmarks
and groups.
`

func writeReadme(dir, text string) error {
	return os.WriteFile(filepath.Join(dir, "README.md"), []byte(text), 0o644)
}

func writeRootReadme(outDir string, cfg *config.Config, sum *Summary) error {
	var b strings.Builder
	b.WriteString("# Dataset\n\n")
	fmt.Fprintf(&b, "Exported from %s (project %d) with neuropub.\n\n",
		cfg.Project.ServerURL, cfg.Project.ProjectID)
	if cfg.Project.Units != "" {
		fmt.Fprintf(&b, "All spatial coordinates are in %s.\n\n", cfg.Project.Units)
	}

	// Sections with nothing selected write no subdirectory, so list only
	// what actually exists.
	b.WriteString("## Contents\n\n")
	if sum.Annotations > 0 {
		fmt.Fprintf(&b, "- `annotations/`: %d annotations and their graph\n", sum.Annotations)
	}
	if sum.Neurons > 0 {
		fmt.Fprintf(&b, "- `neurons/`: %d neurons (skeletons, connectors, tags)\n", sum.Neurons)
	}
	if sum.Volumes > 0 {
		fmt.Fprintf(&b, "- `volumes/`: %d volumetric meshes\n", sum.Volumes)
	}
	if sum.Locations > 0 {
		fmt.Fprintf(&b, "- `landmarks/`: %d landmark locations\n", sum.Locations)
	}
	b.WriteString("- `metadata.toml`: provenance for this export\n")

	if cfg.Citation.DOI != "" || cfg.Citation.URL != "" || cfg.Citation.BibLaTeX != "" {
		b.WriteString("\n## Citation\n\n")
		if cfg.Citation.DOI != "" {
			fmt.Fprintf(&b, "DOI: %s\n\n", cfg.Citation.DOI)
		}
		if cfg.Citation.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n\n", cfg.Citation.URL)
		}
		if cfg.Citation.BibLaTeX != "" {
			fmt.Fprintf(&b, "```bibtex\n%s\n```\n", strings.TrimSpace(cfg.Citation.BibLaTeX))
		}
	}

	return os.WriteFile(filepath.Join(outDir, "README.md"), []byte(b.String()), 0o644)
}
