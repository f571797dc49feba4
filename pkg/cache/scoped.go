package cache

// ScopedKeyer wraps a Keyer with a prefix so separate contexts get separate
// cache namespaces - the server scopes keys per deployment, tests scope
// them per run.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ward7:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// NetworkKey generates a prefixed key for assembled-network caching.
func (k *ScopedKeyer) NetworkKey(peopleHash, contactsHash string, opts NetworkKeyOpts) string {
	return k.prefix + k.inner.NetworkKey(peopleHash, contactsHash, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(networkHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(networkHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
