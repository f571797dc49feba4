package cli

import (
	"github.com/spf13/cobra"

	"github.com/contactviz/contactviz/pkg/pipeline"
)

// Flag registration shared between the export, build, layout, and render
// commands. Each helper binds a slice of pipeline.Options fields so the
// commands stay in sync on names and defaults.

// addBuildFlags registers the flags that control network assembly.
// The membership columns arrive as a comma-separated --group-by string and
// are parsed into opts in the command's RunE.
func addBuildFlags(cmd *cobra.Command, opts *pipeline.Options, groupBy *string) {
	cmd.Flags().StringVar(&opts.IDColumn, "id-column", opts.IDColumn, `people column holding the identifier (default "id")`)
	cmd.Flags().StringVar(&opts.SourceColumn, "source-column", opts.SourceColumn, `contacts column holding the first identifier (default "source")`)
	cmd.Flags().StringVar(&opts.TargetColumn, "target-column", opts.TargetColumn, `contacts column holding the second identifier (default "target")`)
	cmd.Flags().StringVar(&opts.LabelColumn, "label-column", opts.LabelColumn, "people column drawn as the node label")
	cmd.Flags().StringVarP(groupBy, "group-by", "g", "", "membership column(s) that infer connections (comma-separated)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the network cache")
}

// addLayoutFlags registers the flags that control the force simulation.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for the force layout")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "maximum simulation iterations")
	cmd.Flags().Float64Var(&opts.SpringK, "spring-k", opts.SpringK, "optimal spring length constant")
	cmd.Flags().Float64Var(&opts.GroupWeight, "group-weight", opts.GroupWeight, "spring weight for membership-inferred connections")
}

// addRenderFlags registers the flags that control document styling.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Title, "title", opts.Title, "document title")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "canvas height in pixels")
	cmd.Flags().Float64Var(&opts.NodeSizeSelected, "node-size-selected", opts.NodeSizeSelected, "radius of the selected node")
	cmd.Flags().Float64Var(&opts.NodeSizeUnselected, "node-size-unselected", opts.NodeSizeUnselected, "radius of unselected nodes")
	cmd.Flags().Float64Var(&opts.NodeAlphaSelected, "node-alpha-selected", opts.NodeAlphaSelected, "opacity of the selected node")
	cmd.Flags().Float64Var(&opts.NodeAlphaUnselected, "node-alpha-unselected", opts.NodeAlphaUnselected, "opacity of unselected nodes")
	cmd.Flags().StringVar(&opts.BaseColor, "base-color", opts.BaseColor, "fill color for ungrouped nodes")
	cmd.Flags().StringVar(&opts.ColorColumn, "color-column", opts.ColorColumn, "membership column that drives per-group node colors")
}
