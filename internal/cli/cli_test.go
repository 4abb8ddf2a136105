package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/flybrains/neuropub/pkg/cache"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := map[string]bool{
		"export":     false,
		"inspect":    false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	if got := c.Logger.GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestNewCache_NoCache(t *testing.T) {
	backend, err := newCache(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := backend.(*cache.NullCache); !ok {
		t.Errorf("no-cache backend = %T, want NullCache", backend)
	}
}

func TestNewCache_FileDefault(t *testing.T) {
	t.Setenv(redisEnvVar, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	backend, err := newCache(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()
	if _, ok := backend.(*cache.FileCache); !ok {
		t.Errorf("default backend = %T, want FileCache", backend)
	}
}
