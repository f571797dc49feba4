package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactviz/contactviz/pkg/pipeline"
)

// exportCommand creates the export command for the full pipeline.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formatsStr string
		groupBy    string
		output     string
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "export [people.csv] [contacts.csv]",
		Short: "Export an interactive contact-network document from two CSV files",
		Long: `Export an interactive contact-network document from two CSV files.

The export command runs the complete pipeline: it assembles the network from
the people and contacts tables, infers additional connections from shared
membership columns (--group-by), computes a deterministic force layout, and
writes the rendered document(s).

The default output is a single self-contained HTML file with embedded
search and highlighting. Use --format to request svg, dot, png, or json
instead (comma-separated for several at once).

Results are cached locally for faster subsequent runs.

Examples:
  contactviz export people.csv contacts.csv
  contactviz export people.csv contacts.csv -g ward,team -o network.html
  contactviz export people.csv contacts.csv -f html,svg,json --seed 7`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PeoplePath = args[0]
			opts.ContactsPath = args[1]
			opts.Formats = parseFormats(formatsStr)
			if groupBy != "" {
				opts.MembershipColumns = parseColumns(groupBy)
			}
			if err := applyConfigFile(configPath, &opts, cmd.Flags().Changed); err != nil {
				return err
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), svg, dot, png, json (comma-separated)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (flags override config values)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	addBuildFlags(cmd, &opts, &groupBy)
	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts)

	return cmd
}

// runExport executes the pipeline and writes the artifacts.
func (c *CLI) runExport(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Assembling and rendering network...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.PeoplePath,
		output:    output,
		nodes:     result.Stats.NodeCount,
		edges:     result.Stats.EdgeCount,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}
