package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [network.json]",
		Short: "Compute a deterministic force layout for a network",
		Long: `Compute a deterministic force layout for a network.

The layout command takes a network.json file (produced by 'build') and runs
the seeded force simulation. The output is a layout.json file mapping each
identifier to its position, consumed by the 'render' command.

The same network and seed always produce bit-identical positions.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the network, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	n, err := network.ReadNetworkFile(input)
	if err != nil {
		return fmt.Errorf("load network %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing force layout...")
	spinner.Start()

	pos, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, n, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := layout.WriteLayoutFile(pos, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(n.NodeCount(), n.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("contactviz render %s %s", input, outputPath))

	return nil
}
