package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/pipeline"
)

// renderCommand creates the render command for generating documents from a
// precomputed layout.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "render [network.json] [layout.json]",
		Short: "Render documents from a network and its computed layout",
		Long: `Render documents from a network and its computed layout.

The render command takes a network.json file (produced by 'build') and a
layout.json file (produced by 'layout') and generates the requested output
formats. The layout carries all positioning, so this step is purely about
rendering.

Use 'export' as a shortcut to go directly from the CSV inputs to documents.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := applyConfigFile(configPath, &opts, cmd.Flags().Changed); err != nil {
				return err
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], args[1], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), svg, dot, png, json (comma-separated)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (flags override config values)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	addRenderFlags(cmd, &opts)

	return cmd
}

// runRender loads the network and layout, renders the artifacts, and writes
// them.
func (c *CLI) runRender(ctx context.Context, networkPath, layoutPath string, opts pipeline.Options, output string, noCache bool) error {
	n, err := network.ReadNetworkFile(networkPath)
	if err != nil {
		return fmt.Errorf("load network %s: %w", networkPath, err)
	}
	pos, err := layout.ReadLayoutFile(layoutPath)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", layoutPath, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering network...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, n, pos, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     networkPath,
		output:    output,
		nodes:     n.NodeCount(),
		edges:     n.EdgeCount(),
		cacheHit:  cacheHit,
	})
}
