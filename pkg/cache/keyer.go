package cache

// Keyer derives cache keys for computed layouts. Graph parsing is cheap, so
// the layout stage is the only one worth caching.
type Keyer interface {
	// LayoutKey identifies a computed layout by the graph it was computed
	// from and the full parameter set that shaped it.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts carries everything that influences layout output. Params is
// hashed as JSON, so any comparable options struct works; two runs with equal
// parameters on the same graph share a key.
type LayoutKeyOpts struct {
	Algorithm string
	Params    any
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Algorithm, opts.Params)
}
