package cache

import "slices"

// Keyer derives cache keys. Keys must change whenever any input of the
// cached computation changes.
type Keyer interface {
	// LayoutKey keys a layout of the tree with the given content hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the tree.
type LayoutKeyOpts struct {
	Expanded       []string `json:"expanded"`
	Mobile         bool     `json:"mobile"`
	ViewportWidth  float64  `json:"vw"`
	ViewportHeight float64  `json:"vh"`
	// ConfigHash identifies the sizing preset.
	ConfigHash string `json:"config"`
}

// ArtifactKeyOpts are the render inputs besides the layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey sorts the expanded ids, so sets that differ only in iteration
// order share a key.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	opts.Expanded = slices.Sorted(slices.Values(opts.Expanded))
	return hashKey("layout", treeHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, giving each content
// source its own namespace in a shared cache.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
