package cache

// Keyer generates cache keys.
type Keyer interface {
	// FlowKey identifies the flow graph of itemID in the database with the
	// given content hash.
	FlowKey(catalogHash, itemID string, opts FlowKeyOpts) string

	// ArtifactKey identifies a rendering of the flow graph with the given
	// content hash.
	ArtifactKey(flowHash string, opts ArtifactKeyOpts) string
}

// FlowKeyOpts holds the walk options that change a flow graph.
type FlowKeyOpts struct {
	LiquidInBarrels bool `json:"barrels"`
	DetectCycles    bool `json:"cycles"`
	Validate        bool `json:"validate"`
}

// ArtifactKeyOpts holds the rendering options that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes all key components into "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FlowKey implements Keyer.
func (DefaultKeyer) FlowKey(catalogHash, itemID string, opts FlowKeyOpts) string {
	return hashKey("flow", catalogHash, itemID, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(flowHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", flowHash, opts)
}
