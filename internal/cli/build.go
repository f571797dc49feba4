package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/pipeline"
)

// buildCommand creates the build command for assembling a network file.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		groupBy    string
		output     string
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "build [people.csv] [contacts.csv]",
		Short: "Assemble a contact network and write it as network.json",
		Long: `Assemble a contact network and write it as network.json.

The build command resolves identities from the people table, adds the explicit
contacts, and infers additional connections from shared membership columns
(--group-by). The output is a network.json file that 'layout' and 'render'
consume, so the pipeline stages compose as separate commands.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PeoplePath = args[0]
			opts.ContactsPath = args[1]
			if groupBy != "" {
				opts.MembershipColumns = parseColumns(groupBy)
			}
			if err := applyConfigFile(configPath, &opts, cmd.Flags().Changed); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "network.json", "output file")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (flags override config values)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	addBuildFlags(cmd, &opts, &groupBy)

	return cmd
}

// runBuild assembles the network and writes it to disk.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Assembling network...")
	spinner.Start()

	n, cacheHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := network.WriteNetworkFile(n, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Network assembled")
	printFile(output)
	printStats(n.NodeCount(), n.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Compute layout", "contactviz layout "+output)

	return nil
}
