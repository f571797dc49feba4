// Package cache provides pluggable result caching for the export pipeline.
//
// Three backends share one interface: FileCache for CLI usage, RedisCache
// for the server, and NullCache to disable caching. Keys chain content
// hashes stage by stage (table hashes → network key → layout key → artifact
// key), so any input or option change invalidates exactly the stages it
// affects.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Networks and layouts are cheap to keep
// and expensive to recompute for large inputs; artifacts churn with styling
// tweaks, so they expire sooner.
const (
	NetworkTTL  = 7 * 24 * time.Hour
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is the storage interface for pipeline stage results.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NetworkKeyOpts carries the build options that shape the assembled network.
type NetworkKeyOpts struct {
	IDColumn          string   `json:"id_column"`
	SourceColumn      string   `json:"source_column"`
	TargetColumn      string   `json:"target_column"`
	LabelColumn       string   `json:"label_column"`
	MembershipColumns []string `json:"membership_columns"`
}

// LayoutKeyOpts carries the simulation parameters that shape positions.
type LayoutKeyOpts struct {
	Seed        uint64  `json:"seed"`
	Iterations  int     `json:"iterations"`
	SpringK     float64 `json:"spring_k"`
	GroupWeight float64 `json:"group_weight"`
	Threshold   float64 `json:"threshold"`
}

// ArtifactKeyOpts carries the rendering options that shape an artifact.
type ArtifactKeyOpts struct {
	Format              string  `json:"format"`
	Title               string  `json:"title"`
	Width               int     `json:"width"`
	Height              int     `json:"height"`
	NodeSizeSelected    float64 `json:"node_size_selected"`
	NodeSizeUnselected  float64 `json:"node_size_unselected"`
	NodeAlphaSelected   float64 `json:"node_alpha_selected"`
	NodeAlphaUnselected float64 `json:"node_alpha_unselected"`
	BaseColor           string  `json:"base_color"`
	ColorColumn         string  `json:"color_column"`

	// GroupColors participates in the key with deterministic encoding:
	// encoding/json sorts map keys.
	GroupColors map[string]string `json:"group_colors"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// NetworkKey keys the assembled network by the content hashes of both
	// input tables plus the build options.
	NetworkKey(peopleHash, contactsHash string, opts NetworkKeyOpts) string

	// LayoutKey keys computed positions by the network content hash plus
	// the simulation parameters.
	LayoutKey(networkHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the layout content hash plus
	// the rendering options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: stage prefix plus a SHA-256 over
// the JSON-encoded key components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

func (k *DefaultKeyer) NetworkKey(peopleHash, contactsHash string, opts NetworkKeyOpts) string {
	return hashKey("network", peopleHash, contactsHash, opts)
}

func (k *DefaultKeyer) LayoutKey(networkHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", networkHash, opts)
}

func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
