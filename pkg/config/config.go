// Package config loads and validates the TOML export configuration.
//
// Each data section follows the same scoping convention: an absent name
// list means "export everything", an empty list means "export nothing",
// and a populated list means "exactly these". Rename tables map original
// server names to the names used in the published dataset.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flybrains/neuropub/pkg/rename"
	"github.com/flybrains/neuropub/pkg/selection"
)

// Config is the root of the export configuration file.
type Config struct {
	Project     Project   `toml:"project"`
	Annotations Section   `toml:"annotations"`
	Skeletons   Skeletons `toml:"skeletons"`
	Volumes     Section   `toml:"volumes"`
	Landmarks   Landmarks `toml:"landmarks"`
	Citation    Citation  `toml:"citation"`
}

// Project identifies the source server and project.
type Project struct {
	ServerURL string `toml:"server_url"`
	ProjectID int    `toml:"project_id"`
	Units     string `toml:"units"` // spatial units of the dataset, e.g. "nm"
}

// Section is the shared shape of the annotations and volumes sections.
type Section struct {
	// Enabled records whether the section appeared in the config file at
	// all. An absent section is skipped entirely on export.
	Enabled bool `toml:"-"`
	// Annotated lists root annotations: everything annotated by them
	// (transitively) is in scope.
	Annotated []string `toml:"annotated"`
	// Names lists entities in scope by name. Absent means all, empty means
	// none beyond the closure of Annotated.
	Names []string `toml:"names"`
	// Rename maps original names to published names.
	Rename rename.Map `toml:"rename"`
}

// NameScope returns the tri-state scope encoded by the Names field.
func (s Section) NameScope() selection.Scope {
	return selection.ScopeFromList(s.Names)
}

// Skeletons configures neuron export; Tags scopes and renames the node
// tags written alongside each skeleton.
type Skeletons struct {
	Enabled   bool       `toml:"-"`
	Annotated []string   `toml:"annotated"`
	Names     []string   `toml:"names"`
	Rename    rename.Map `toml:"rename"`
	Tags      Tags       `toml:"tags"`
}

// NameScope returns the tri-state scope encoded by the Names field.
func (s Skeletons) NameScope() selection.Scope {
	return selection.ScopeFromList(s.Names)
}

// Tags scopes the node tags exported per neuron.
type Tags struct {
	Names  []string   `toml:"names"`
	Rename rename.Map `toml:"rename"`
}

// NameScope returns the tri-state scope encoded by the Names field.
func (t Tags) NameScope() selection.Scope {
	return selection.ScopeFromList(t.Names)
}

// Landmarks configures landmark and landmark-group export.
type Landmarks struct {
	Enabled     bool       `toml:"-"`
	Groups      []string   `toml:"groups"`
	GroupRename rename.Map `toml:"group_rename"`
	Names       []string   `toml:"names"`
	Rename      rename.Map `toml:"rename"`
}

// NameScope returns the tri-state scope encoded by the Names field.
func (l Landmarks) NameScope() selection.Scope {
	return selection.ScopeFromList(l.Names)
}

// GroupScope returns the tri-state scope encoded by the Groups field.
func (l Landmarks) GroupScope() selection.Scope {
	return selection.ScopeFromList(l.Groups)
}

// Citation describes how the published dataset should be cited.
type Citation struct {
	DOI      string `toml:"doi"`
	URL      string `toml:"url"`
	BibLaTeX string `toml:"biblatex"`
}

// Load reads and decodes a TOML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Annotations.Enabled = meta.IsDefined("annotations")
	cfg.Skeletons.Enabled = meta.IsDefined("skeletons")
	cfg.Volumes.Enabled = meta.IsDefined("volumes")
	cfg.Landmarks.Enabled = meta.IsDefined("landmarks")
	if cfg.Project.ServerURL == "" {
		return nil, fmt.Errorf("config %s: project.server_url is required", path)
	}
	return &cfg, nil
}
