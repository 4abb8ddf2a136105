// Package cli implements the neuropub command-line interface.
//
// The main commands are:
//   - export: pull annotations, neurons, volumes, and landmarks from a
//     server into a portable dataset directory
//   - inspect: fetch the annotation graph and summarize or render it
//   - cache: manage the server response cache
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flybrains/neuropub/pkg/buildinfo"
	"github.com/flybrains/neuropub/pkg/cache"
	"github.com/flybrains/neuropub/pkg/catmaid"
)

// appName is the application name used for directories and display.
const appName = "neuropub"

// redisEnvVar selects a Redis cache backend when set, for shared caches
// on multi-user analysis machines.
const redisEnvVar = "NEUROPUB_REDIS_ADDR"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Neuropub exports neuron reconstruction data into portable datasets",
		Long:         `Neuropub pulls annotations, neuron skeletons, volumetric meshes, and landmarks from a CATMAID server and writes them as a versionable, self-describing dataset directory that can be read back without server access.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newClient builds a server client with the configured cache backend.
func (c *CLI) newClient(ctx context.Context, creds catmaid.Credentials, noCache, refresh bool) (*catmaid.Client, error) {
	backend, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return catmaid.NewClient(creds, catmaid.Options{
		Backend: backend,
		Refresh: refresh,
	})
}

// newCache selects the response cache backend: Redis when NEUROPUB_REDIS_ADDR
// is set, otherwise a file cache under the XDG cache directory. Backend
// setup failures degrade to no caching rather than aborting the command.
func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(redisEnvVar); addr != "" {
		return cache.NewRedisCache(ctx, addr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/neuropub/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadCredentials merges file-based and environment credentials with the
// config's server settings. Explicit file credentials win over the
// environment; the config supplies server URL and project ID when the
// credentials leave them empty.
func loadCredentials(credsPath, serverURL string, projectID int) (catmaid.Credentials, error) {
	creds := catmaid.CredentialsFromEnv()
	if credsPath != "" {
		fileCreds, err := catmaid.LoadCredentials(credsPath)
		if err != nil {
			return catmaid.Credentials{}, err
		}
		creds = creds.Merge(fileCreds)
	}
	if creds.Server == "" {
		creds.Server = serverURL
	}
	if creds.ProjectID == 0 {
		creds.ProjectID = projectID
	}
	return creds, nil
}
