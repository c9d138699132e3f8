package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server uses it to
// keep its entries apart from other users of a shared Redis instance:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "recipeflow:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FlowKey implements Keyer.
func (k *ScopedKeyer) FlowKey(catalogHash, itemID string, opts FlowKeyOpts) string {
	return k.prefix + k.inner.FlowKey(catalogHash, itemID, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(flowHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(flowHash, opts)
}
