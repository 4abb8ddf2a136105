package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flybrains/neuropub/pkg/config"
	"github.com/flybrains/neuropub/pkg/graph"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		credsPath string
		noCache   bool
		dotPath   string
		svgPath   string
	)

	cmd := &cobra.Command{
		Use:   "inspect <config.toml>",
		Short: "Fetch the annotation graph and summarize it",
		Long: `Inspect fetches the project's annotation graph and prints node and edge
counts per kind. With --dot or --svg it writes the graph as Graphviz DOT
or a rendered SVG, which helps when choosing annotation roots for an
export config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], credsPath, noCache, dotPath, svgPath)
		},
	}

	cmd.Flags().StringVar(&credsPath, "credentials", "", "path to a JSON credentials file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching entirely")
	cmd.Flags().StringVar(&dotPath, "dot", "", "write the graph as Graphviz DOT to this file")
	cmd.Flags().StringVar(&svgPath, "svg", "", "render the graph as SVG to this file")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, configPath, credsPath string, noCache bool, dotPath, svgPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	creds, err := loadCredentials(credsPath, cfg.Project.ServerURL, cfg.Project.ProjectID)
	if err != nil {
		return err
	}
	client, err := c.newClient(ctx, creds, noCache, false)
	if err != nil {
		return err
	}
	defer client.Close()

	spin := newSpinnerWithContext(ctx, "Fetching annotation graph...")
	spin.Start()
	g, err := client.AnnotationGraph(ctx)
	if err != nil {
		spin.StopWithError("Fetch failed")
		return err
	}
	spin.Stop()

	printGraphStats(g)

	if dotPath != "" {
		if err := os.WriteFile(dotPath, []byte(g.ToDOT()), 0o644); err != nil {
			return err
		}
		printFile(dotPath)
	}
	if svgPath != "" {
		svg, err := g.RenderSVG(ctx)
		if err != nil {
			return fmt.Errorf("render SVG: %w", err)
		}
		if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
			return err
		}
		printFile(svgPath)
	}
	return nil
}

func printGraphStats(g *graph.Graph) {
	counts := make(map[graph.Kind]int)
	for _, n := range g.Nodes() {
		counts[n.Kind]++
	}
	printInfo("Annotation graph")
	printKeyValue("annotations", fmt.Sprintf("%d", counts[graph.KindAnnotation]))
	printKeyValue("neurons", fmt.Sprintf("%d", counts[graph.KindNeuron]))
	printKeyValue("volumes", fmt.Sprintf("%d", counts[graph.KindVolume]))
	printKeyValue("edges", fmt.Sprintf("%d", g.EdgeCount()))
}
