package layout

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// DefaultMaxSteps is the default snapshot ceiling of a single run.
const DefaultMaxSteps = 1000

// FragmentThreshold is the size below which a part cut off by a removal is
// removed along with it.
const FragmentThreshold = 10

// ErrOutOfSteps is returned by Build when the history reaches
// Options.MaxSteps. The partial result is returned alongside it.
var ErrOutOfSteps = errors.New("layout ran out of steps")

// Options controls a layout run.
type Options struct {
	// MaxSteps caps the number of recorded snapshots. Zero means
	// DefaultMaxSteps.
	MaxSteps int

	// FixObstacles, FixNonStraight and FixIntersections switch the repair
	// passes. A disabled pass leaves its classification unresolved.
	FixObstacles     bool
	FixNonStraight   bool
	FixIntersections bool

	// DebugInfo is carried through to renderers; layout ignores it.
	DebugInfo bool

	// Logger receives progress output. Nil discards it.
	Logger *log.Logger
}

// DefaultOptions returns options with every repair pass enabled.
func DefaultOptions() Options {
	return Options{
		MaxSteps:         DefaultMaxSteps,
		FixObstacles:     true,
		FixNonStraight:   true,
		FixIntersections: true,
	}
}

// SetDefaults fills zero values. The repair switches are left alone since
// false is a meaningful setting; start from DefaultOptions to enable them.
func (o *Options) SetDefaults() {
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.MaxSteps < 0 {
		return fmt.Errorf("max steps must not be negative, got %d", o.MaxSteps)
	}
	return nil
}
