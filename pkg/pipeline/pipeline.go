// Package pipeline runs the world -> layout -> render flow shared by the
// CLI and the API.
//
// A [Runner] owns the cache, the history store and the logger. Layout
// histories are cached by world content hash and layout options, rendered
// snapshots by layout key, step and format.
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	run, err := runner.Layout(ctx, w, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	svg, err := runner.RenderRun(ctx, run, -1, render.FormatSVG, opts)
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/cache"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/layout"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/render"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Layout settings.
	MaxSteps         int
	FixObstacles     bool
	FixNonStraight   bool
	FixIntersections bool

	// Render settings.
	DebugInfo bool
	Scale     float64

	// Sanitize drops dangling exits and empty rooms instead of rejecting
	// the world.
	Sanitize bool

	// Refresh skips cache reads; results are still written.
	Refresh bool

	Logger *log.Logger
}

// DefaultOptions enables every repair pass.
func DefaultOptions() Options {
	lo := layout.DefaultOptions()
	return Options{
		MaxSteps:         lo.MaxSteps,
		FixObstacles:     lo.FixObstacles,
		FixNonStraight:   lo.FixNonStraight,
		FixIntersections: lo.FixIntersections,
	}
}

// ValidateAndSetDefaults fills zero values and checks ranges.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxSteps == 0 {
		o.MaxSteps = layout.DefaultMaxSteps
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max steps must not be negative, got %d", o.MaxSteps)
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must not be negative, got %g", o.Scale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// LayoutOptions converts to builder options.
func (o Options) LayoutOptions() layout.Options {
	return layout.Options{
		MaxSteps:         o.MaxSteps,
		FixObstacles:     o.FixObstacles,
		FixNonStraight:   o.FixNonStraight,
		FixIntersections: o.FixIntersections,
		DebugInfo:        o.DebugInfo,
		Logger:           o.Logger,
	}
}

// RenderOptions converts to renderer options.
func (o Options) RenderOptions() render.Options {
	return render.Options{DebugInfo: o.DebugInfo, Scale: o.Scale}
}

// LayoutKeyOpts returns the options that affect a layout's outcome.
func (o Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		MaxSteps:         o.MaxSteps,
		FixObstacles:     o.FixObstacles,
		FixNonStraight:   o.FixNonStraight,
		FixIntersections: o.FixIntersections,
	}
}

// ArtifactKeyOpts returns the options that affect one rendering.
func (o Options) ArtifactKeyOpts(step int, f render.Format) cache.ArtifactKeyOpts {
	ko := cache.ArtifactKeyOpts{Step: step, Format: string(f), DebugInfo: o.DebugInfo}
	if f == render.FormatPNG {
		ko.Scale = o.Scale
	}
	return ko
}
