package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/contactviz/contactviz/pkg/pipeline"
)

// Config mirrors the pipeline options that make sense in a project-level
// contactviz.toml. Flags set explicitly on the command line always win over
// config values.
type Config struct {
	IDColumn          string   `toml:"id_column"`
	SourceColumn      string   `toml:"source_column"`
	TargetColumn      string   `toml:"target_column"`
	LabelColumn       string   `toml:"label_column"`
	MembershipColumns []string `toml:"membership_columns"`

	Seed        uint64  `toml:"seed"`
	Iterations  int     `toml:"iterations"`
	SpringK     float64 `toml:"spring_k"`
	GroupWeight float64 `toml:"group_weight"`

	Formats             []string `toml:"formats"`
	Title               string   `toml:"title"`
	Width               int      `toml:"width"`
	Height              int      `toml:"height"`
	NodeSizeSelected    float64  `toml:"node_size_selected"`
	NodeSizeUnselected  float64  `toml:"node_size_unselected"`
	NodeAlphaSelected   float64  `toml:"node_alpha_selected"`
	NodeAlphaUnselected float64  `toml:"node_alpha_unselected"`
	BaseColor           string   `toml:"base_color"`
	ColorColumn         string   `toml:"color_column"`

	// GroupColors pins membership values of the color column to fixed
	// colors, e.g. [group_colors] x = "#DC0000".
	GroupColors map[string]string `toml:"group_colors"`
}

// loadConfig decodes a TOML config file, rejecting unknown keys so typos
// surface immediately.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return &cfg, nil
}

// apply copies config values into opts for every field whose flag was not set
// on the command line. The changed predicate reports whether a flag name was
// given explicitly.
func (cfg *Config) apply(opts *pipeline.Options, changed func(name string) bool) {
	if cfg.IDColumn != "" && !changed("id-column") {
		opts.IDColumn = cfg.IDColumn
	}
	if cfg.SourceColumn != "" && !changed("source-column") {
		opts.SourceColumn = cfg.SourceColumn
	}
	if cfg.TargetColumn != "" && !changed("target-column") {
		opts.TargetColumn = cfg.TargetColumn
	}
	if cfg.LabelColumn != "" && !changed("label-column") {
		opts.LabelColumn = cfg.LabelColumn
	}
	if len(cfg.MembershipColumns) > 0 && !changed("group-by") {
		opts.MembershipColumns = cfg.MembershipColumns
	}

	if cfg.Seed != 0 && !changed("seed") {
		opts.Seed = cfg.Seed
	}
	if cfg.Iterations != 0 && !changed("iterations") {
		opts.Iterations = cfg.Iterations
	}
	if cfg.SpringK != 0 && !changed("spring-k") {
		opts.SpringK = cfg.SpringK
	}
	if cfg.GroupWeight != 0 && !changed("group-weight") {
		opts.GroupWeight = cfg.GroupWeight
	}

	if len(cfg.Formats) > 0 && !changed("format") {
		opts.Formats = cfg.Formats
	}
	if cfg.Title != "" && !changed("title") {
		opts.Title = cfg.Title
	}
	if cfg.Width != 0 && !changed("width") {
		opts.Width = cfg.Width
	}
	if cfg.Height != 0 && !changed("height") {
		opts.Height = cfg.Height
	}
	if cfg.NodeSizeSelected != 0 && !changed("node-size-selected") {
		opts.NodeSizeSelected = cfg.NodeSizeSelected
	}
	if cfg.NodeSizeUnselected != 0 && !changed("node-size-unselected") {
		opts.NodeSizeUnselected = cfg.NodeSizeUnselected
	}
	if cfg.NodeAlphaSelected != 0 && !changed("node-alpha-selected") {
		opts.NodeAlphaSelected = cfg.NodeAlphaSelected
	}
	if cfg.NodeAlphaUnselected != 0 && !changed("node-alpha-unselected") {
		opts.NodeAlphaUnselected = cfg.NodeAlphaUnselected
	}
	if cfg.BaseColor != "" && !changed("base-color") {
		opts.BaseColor = cfg.BaseColor
	}
	if cfg.ColorColumn != "" && !changed("color-column") {
		opts.ColorColumn = cfg.ColorColumn
	}
	// Group colors have no flag equivalent; the config is their only source.
	if len(cfg.GroupColors) > 0 {
		opts.GroupColors = cfg.GroupColors
	}
}

// applyConfigFile loads path (when non-empty) and merges it into opts.
func applyConfigFile(path string, opts *pipeline.Options, changed func(name string) bool) error {
	if path == "" {
		return nil
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	cfg.apply(opts, changed)
	return nil
}
