package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mmberrors "github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/errors"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/world"
)

// historyExt is the extension of layout history files.
const historyExt = ".mmbh"

// layoutFlags are the layout switches shared by layout and render.
type layoutFlags struct {
	maxSteps           int
	noFixObstacles     bool
	noFixNonStraight   bool
	noFixIntersections bool
	sanitize           bool
	refresh            bool
	noCache            bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 0, "step ceiling (default from config)")
	cmd.Flags().BoolVar(&f.noFixObstacles, "no-fix-obstacles", false, "skip the obstacle repair pass")
	cmd.Flags().BoolVar(&f.noFixNonStraight, "no-fix-non-straight", false, "skip the non-straight repair pass")
	cmd.Flags().BoolVar(&f.noFixIntersections, "no-fix-intersections", false, "skip the intersection repair pass")
	cmd.Flags().BoolVar(&f.sanitize, "sanitize", false, "drop dangling exits and empty rooms instead of failing")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply overrides opts with the flags the user set.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("max-steps") {
		opts.MaxSteps = f.maxSteps
	}
	if f.noFixObstacles {
		opts.FixObstacles = false
	}
	if f.noFixNonStraight {
		opts.FixNonStraight = false
	}
	if f.noFixIntersections {
		opts.FixIntersections = false
	}
	opts.Sanitize = opts.Sanitize || f.sanitize
	opts.Refresh = opts.Refresh || f.refresh
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		save   bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "layout [world.yaml|world.json]",
		Short: "Lay out a world and write its history",
		Long: `Lay out a world and write its history.

The world file lists rooms with their exits (JSON or YAML). The layout places
rooms on a grid one at a time, repairs broken connections and compacts the
result. Every step is kept in the output history (` + historyExt + `), which
'render' and 'view' read.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], output, save, strict, flags.noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>"+historyExt+")")
	cmd.Flags().BoolVar(&save, "save", false, "also keep the history in the store")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the step ceiling is reached")
	flags.register(cmd)

	return cmd
}

// runLayout loads the world, builds the layout and writes the history.
func (c *CLI) runLayout(ctx context.Context, input, output string, save, strict, noCache bool, opts pipeline.Options) error {
	w, err := loadWorld(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %d rooms...", len(w.Rooms)))
	spinner.Start()

	run, err := runner.Layout(ctx, w, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done("layout finished", "steps", run.Result.Len(), "cached", run.CacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + historyExt
	}
	if err := history.WriteFile(outputPath, run.Document); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if run.Result.OutOfSteps() {
		printWarning("Stopped at the step ceiling (%d); the last snapshot is partial", opts.MaxSteps)
	} else {
		printSuccess("Layout complete")
	}
	printFile(outputPath)
	printStats(run.Result.Last().PlacedCount(), run.Result.Len(), run.CacheHit)
	if n := run.Removed.DanglingExits + run.Removed.EmptyRooms; n > 0 {
		printDetail("sanitized: %d dangling exits, %d empty rooms", run.Removed.DanglingExits, run.Removed.EmptyRooms)
	}
	printReport(run.Report())

	if save {
		id, err := runner.Save(ctx, run)
		if err != nil {
			return err
		}
		printKeyValue("Stored as", id)
	}

	if strict && run.Result.OutOfSteps() {
		return mmberrors.New(mmberrors.ErrCodeOutOfSteps, "layout of %s did not converge within %d steps", input, opts.MaxSteps)
	}

	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}

// loadWorld reads a world file, reporting a missing file by code.
func loadWorld(path string) (*world.World, error) {
	w, err := world.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, mmberrors.Wrap(mmberrors.ErrCodeFileNotFound, err, "world file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("load world %s: %w", path, err)
	}
	return w, nil
}
