package cache

// LayoutKeyOpts are the layout options that change a layout's outcome.
type LayoutKeyOpts struct {
	MaxSteps         int  `json:"max_steps"`
	FixObstacles     bool `json:"fix_obstacles"`
	FixNonStraight   bool `json:"fix_non_straight"`
	FixIntersections bool `json:"fix_intersections"`
}

// ArtifactKeyOpts identify one rendering of one snapshot.
type ArtifactKeyOpts struct {
	Step      int     `json:"step"`
	Format    string  `json:"format"`
	DebugInfo bool    `json:"debug_info"`
	Scale     float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout history by world content hash and options.
	LayoutKey(worldHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered snapshot of a cached layout.
	ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key inputs under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(worldHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", worldHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutKey, opts)
}
