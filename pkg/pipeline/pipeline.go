// Package pipeline provides the core export pipeline for contactviz.
//
// This package implements the complete build → layout → render pipeline that
// can be used by CLI and server components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Resolve identities and assemble the contact network from the
//     people and contacts tables
//  2. Layout: Compute deterministic positions with the seeded force layout
//  3. Render: Generate output in various formats (HTML, SVG, DOT, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// The stages are strictly sequential: validation failures abort before
// layout, and the network is read-only once assembled.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    PeoplePath:        "people.csv",
//	    ContactsPath:      "contacts.csv",
//	    MembershipColumns: []string{"team"},
//	    Formats:           []string{"html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Artifacts["html"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/contactviz/contactviz/pkg/cache"
	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/scene"
	"github.com/contactviz/contactviz/pkg/table"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the export pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	PeoplePath        string   `json:"people_path,omitempty"`
	ContactsPath      string   `json:"contacts_path,omitempty"`
	IDColumn          string   `json:"id_column,omitempty"`
	SourceColumn      string   `json:"source_column,omitempty"`
	TargetColumn      string   `json:"target_column,omitempty"`
	LabelColumn       string   `json:"label_column,omitempty"`
	MembershipColumns []string `json:"membership_columns,omitempty"`
	Refresh           bool     `json:"refresh,omitempty"`

	// Layout options
	Seed        uint64  `json:"seed,omitempty"`
	Iterations  int     `json:"iterations,omitempty"`
	SpringK     float64 `json:"spring_k,omitempty"`
	GroupWeight float64 `json:"group_weight,omitempty"`

	// Render options
	Formats             []string `json:"formats,omitempty"`
	Title               string   `json:"title,omitempty"`
	Width               int      `json:"width,omitempty"`
	Height              int      `json:"height,omitempty"`
	NodeSizeSelected    float64  `json:"node_size_selected,omitempty"`
	NodeSizeUnselected  float64  `json:"node_size_unselected,omitempty"`
	NodeAlphaSelected   float64  `json:"node_alpha_selected,omitempty"`
	NodeAlphaUnselected float64  `json:"node_alpha_unselected,omitempty"`
	BaseColor           string   `json:"base_color,omitempty"`
	ColorColumn         string   `json:"color_column,omitempty"`

	// GroupColors pins specific ColorColumn values to fixed colors instead
	// of the generated palette.
	GroupColors map[string]string `json:"group_colors,omitempty"`

	// Runtime options (not serialized). In-memory tables take precedence
	// over the path options; the server hands uploaded CSVs in directly.
	People   *table.Table `json:"-"`
	Contacts *table.Table `json:"-"`
	Logger   *log.Logger  `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution in logs and responses.
	RunID string

	// Network is the assembled contact network.
	Network *network.Network

	// NetworkHash is the content hash of the serialized network.
	NetworkHash string

	// Layout holds the computed positions.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the assembled network came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: html, svg, dot, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for network assembly.
func (o *Options) ValidateForBuild() error {
	if o.People == nil && o.PeoplePath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "people table is required")
	}
	if o.Contacts == nil && o.ContactsPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "contacts table is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Seed == 0 {
		o.Seed = layout.DefaultSeed
	}
	if o.Iterations == 0 {
		o.Iterations = layout.DefaultIterations
	}
	if o.SpringK == 0 {
		o.SpringK = layout.DefaultSpringK
	}
	if o.GroupWeight == 0 {
		o.GroupWeight = layout.DefaultGroupWeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	lo := o.LayoutOptions()
	return lo.ValidateAndSetDefaults()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	style := o.Style()
	return style.ValidateAndSetDefaults()
}

// BuildOptions returns the network build configuration.
func (o *Options) BuildOptions() network.BuildOptions {
	return network.BuildOptions{
		IDColumn:          o.IDColumn,
		SourceColumn:      o.SourceColumn,
		TargetColumn:      o.TargetColumn,
		LabelColumn:       o.LabelColumn,
		MembershipColumns: o.MembershipColumns,
	}
}

// LayoutOptions returns the force-simulation configuration.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Seed:        o.Seed,
		Iterations:  o.Iterations,
		SpringK:     o.SpringK,
		GroupWeight: o.GroupWeight,
	}
}

// Style returns the scene styling configuration.
func (o *Options) Style() scene.Style {
	return scene.Style{
		Width:               o.Width,
		Height:              o.Height,
		NodeSizeSelected:    o.NodeSizeSelected,
		NodeSizeUnselected:  o.NodeSizeUnselected,
		NodeAlphaSelected:   o.NodeAlphaSelected,
		NodeAlphaUnselected: o.NodeAlphaUnselected,
		BaseColor:           o.BaseColor,
		ColorColumn:         o.ColorColumn,
		GroupColors:         o.GroupColors,
	}
}

// NetworkKeyOpts returns cache key options for the build stage.
func (o *Options) NetworkKeyOpts() cache.NetworkKeyOpts {
	return cache.NetworkKeyOpts{
		IDColumn:          o.IDColumn,
		SourceColumn:      o.SourceColumn,
		TargetColumn:      o.TargetColumn,
		LabelColumn:       o.LabelColumn,
		MembershipColumns: o.MembershipColumns,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:        o.Seed,
		Iterations:  o.Iterations,
		SpringK:     o.SpringK,
		GroupWeight: o.GroupWeight,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:              format,
		Title:               o.Title,
		Width:               o.Width,
		Height:              o.Height,
		NodeSizeSelected:    o.NodeSizeSelected,
		NodeSizeUnselected:  o.NodeSizeUnselected,
		NodeAlphaSelected:   o.NodeAlphaSelected,
		NodeAlphaUnselected: o.NodeAlphaUnselected,
		BaseColor:           o.BaseColor,
		ColorColumn:         o.ColorColumn,
		GroupColors:         o.GroupColors,
	}
}
