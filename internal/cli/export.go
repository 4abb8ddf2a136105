package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flybrains/neuropub/pkg/config"
	"github.com/flybrains/neuropub/pkg/export"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		credsPath string
		refresh   bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "export <config.toml> <out-dir>",
		Short: "Export a dataset from the server into a directory",
		Long: `Export pulls the data selected by the config file from the server and
writes it as a self-describing dataset directory. The directory must not
exist yet; a failed export leaves nothing behind.

Credentials come from the environment (CATMAID_SERVER, CATMAID_API_TOKEN,
CATMAID_PROJECT_ID, optionally CATMAID_HTTP_USER / CATMAID_HTTP_PASSWORD,
also read from a .env file) or from a JSON file passed with --credentials.
The config's project section fills in whatever the credentials omit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], args[1], credsPath, refresh, noCache)
		},
	}

	cmd.Flags().StringVar(&credsPath, "credentials", "", "path to a JSON credentials file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached server responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching entirely")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, configPath, outDir, credsPath string, refresh, noCache bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	creds, err := loadCredentials(credsPath, cfg.Project.ServerURL, cfg.Project.ProjectID)
	if err != nil {
		return err
	}

	client, err := c.newClient(ctx, creds, noCache, refresh)
	if err != nil {
		return err
	}
	defer client.Close()

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, "Exporting dataset...")
	spin.Start()

	exp := export.New(client, cfg, c.Logger)
	sum, err := exp.Run(ctx, outDir)
	if err != nil {
		spin.StopWithError("Export failed")
		if errors.Is(err, export.ErrOutDirExists) {
			printDetail("Choose a new directory; exports never overwrite.")
		}
		return err
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Exported %d neurons, %d annotations, %d volumes, %d landmark locations",
		sum.Neurons, sum.Annotations, sum.Volumes, sum.Locations))

	printSuccess("Dataset written")
	printFile(outDir)
	printKeyValue("run id", sum.RunID)
	printKeyValue("config hash", sum.ConfigHash)
	return nil
}
