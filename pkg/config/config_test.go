package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const fullConfig = `
[project]
server_url = "https://example.org/catmaid"
project_id = 1
units = "nm"

[annotations]
annotated = ["publication root"]
rename = { "internal name" = "public name" }

[skeletons]
annotated = ["publication root"]
names = ["neuron a"]

[skeletons.tags]
names = ["soma", "ends"]

[volumes]
names = []

[landmarks]
groups = ["brain regions"]

[citation]
doi = "10.1234/example"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Project.ServerURL != "https://example.org/catmaid" {
		t.Errorf("server_url = %q", cfg.Project.ServerURL)
	}
	if cfg.Project.ProjectID != 1 {
		t.Errorf("project_id = %d", cfg.Project.ProjectID)
	}
	if got := cfg.Annotations.Rename["internal name"]; got != "public name" {
		t.Errorf("rename = %q", got)
	}
	if cfg.Citation.DOI != "10.1234/example" {
		t.Errorf("doi = %q", cfg.Citation.DOI)
	}
}

func TestLoad_SectionPresence(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[project]
server_url = "https://example.org"

[skeletons]
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Annotations.Enabled {
		t.Error("absent annotations section should be disabled")
	}
	if !cfg.Skeletons.Enabled {
		t.Error("present skeletons section should be enabled")
	}
	if cfg.Volumes.Enabled || cfg.Landmarks.Enabled {
		t.Error("absent sections should be disabled")
	}
}

func TestLoad_TriStateScopes(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatal(err)
	}

	// Absent names list means everything.
	if !cfg.Annotations.NameScope().IsAll() {
		t.Error("annotations without names should scope to all")
	}
	// Explicit names mean exactly those.
	if got := cfg.Skeletons.NameScope().Names(); len(got) != 1 || got[0] != "neuron a" {
		t.Errorf("skeleton names = %v", got)
	}
	// An empty list means nothing.
	if !cfg.Volumes.NameScope().IsNone() {
		t.Error("volumes with empty names should scope to none")
	}
}

func TestLoad_RequiresServerURL(t *testing.T) {
	_, err := Load(writeConfig(t, "[project]\nproject_id = 1\n"))
	if err == nil {
		t.Error("missing server_url should be rejected")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file should be an error")
	}
}

func TestHash_Stable(t *testing.T) {
	a, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() != b.Hash() {
		t.Error("identical configs should hash identically")
	}
	if len(a.Hash()) != 16 {
		t.Errorf("hash length = %d, want 16", len(a.Hash()))
	}
}

func TestHash_ChangesWithContent(t *testing.T) {
	a, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(writeConfig(t, `
[project]
server_url = "https://example.org/catmaid"
project_id = 2
`))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() == b.Hash() {
		t.Error("different configs should hash differently")
	}
}
