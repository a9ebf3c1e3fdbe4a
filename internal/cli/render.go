package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/render"
)

// renderFlags select what to draw.
type renderFlags struct {
	formats  string
	step     int
	allSteps bool
	outDir   string
	debug    bool
	scale    float64
	stored   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [history.mmbh|world.yaml|id]",
		Short: "Draw layout snapshots as SVG, PNG, text or DOT",
		Long: `Draw layout snapshots.

The input is a history written by 'layout', a world file (laid out first) or,
with --stored, the id of a layout in the history store.

Formats:
  svg    grid drawing with connections colored by kind
  png    raster version of the svg drawing
  txt    character grid with a connection summary
  dot    Graphviz source with pinned room positions
  graph  the dot source laid out by Graphviz as SVG

By default the last snapshot is drawn. --step picks another one and
--all-steps draws every snapshot, numbering the output files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts)
			opts.DebugInfo = opts.DebugInfo || rf.debug
			opts.Scale = rf.scale
			if !cmd.Flags().Changed("step") {
				rf.step = -1
			}
			return c.runRender(cmd.Context(), args[0], rf, lf.noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&rf.formats, "format", "f", "svg", "output formats: svg, png, txt, dot, graph (comma-separated)")
	cmd.Flags().IntVar(&rf.step, "step", 0, "snapshot to draw (default: last)")
	cmd.Flags().BoolVar(&rf.allSteps, "all-steps", false, "draw every snapshot")
	cmd.Flags().StringVarP(&rf.outDir, "output", "o", "", "output directory (default: next to the input)")
	cmd.Flags().BoolVar(&rf.debug, "debug", false, "label rooms with ids and coordinates")
	cmd.Flags().Float64Var(&rf.scale, "scale", 1, "PNG scale factor")
	cmd.Flags().BoolVar(&rf.stored, "stored", false, "treat the argument as a stored layout id")
	lf.register(cmd)

	return cmd
}

// runRender loads or builds a run and writes the requested snapshots.
func (c *CLI) runRender(ctx context.Context, input string, rf renderFlags, noCache bool, opts pipeline.Options) error {
	formats, err := render.ParseFormats(rf.formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	run, err := c.loadRun(ctx, runner, input, rf.stored, opts)
	if err != nil {
		return err
	}

	steps := []int{rf.step}
	if rf.allSteps {
		steps = make([]int, run.Result.Len())
		for i := range steps {
			steps[i] = i
		}
	}

	base := outputBase(input, rf.outDir, rf.stored)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	var written []string
	for _, step := range steps {
		for _, f := range formats {
			if ctx.Err() != nil {
				spinner.Stop()
				return ctx.Err()
			}
			data, err := runner.RenderRun(ctx, run, step, f, opts)
			if err != nil {
				spinner.StopWithError("Render failed")
				return fmt.Errorf("render %s: %w", f, err)
			}
			path := base + f.Ext()
			if rf.allSteps || step >= 0 {
				path = fmt.Sprintf("%s.%03d%s", base, step, f.Ext())
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				spinner.StopWithError("Render failed")
				return fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	spinner.Stop()
	prog.done("render finished", "files", len(written))

	printSuccess("Rendered %d file(s)", len(written))
	for _, p := range written {
		printFile(p)
	}
	return nil
}

// loadRun returns the run behind input: a history file, a stored id or a
// world to lay out.
func (c *CLI) loadRun(ctx context.Context, runner *pipeline.Runner, input string, stored bool, opts pipeline.Options) (*pipeline.Run, error) {
	if stored {
		return runner.Load(ctx, input)
	}
	if strings.EqualFold(filepath.Ext(input), historyExt) {
		doc, err := history.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("load history %s: %w", input, err)
		}
		run, err := pipeline.RunFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("load history %s: %w", input, err)
		}
		return run, nil
	}

	w, err := loadWorld(input)
	if err != nil {
		return nil, err
	}
	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %d rooms...", len(w.Rooms)))
	spinner.Start()
	run, err := runner.Layout(ctx, w, opts)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("compute layout: %w", err)
	}
	if run.Result.OutOfSteps() {
		printWarning("Stopped at the step ceiling (%d); the last snapshot is partial", opts.MaxSteps)
	}
	return run, nil
}

// outputBase returns the output path without extension.
func outputBase(input, outDir string, stored bool) string {
	name := input
	if !stored {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		if outDir == "" {
			outDir = filepath.Dir(input)
		}
	}
	if outDir == "" {
		return name
	}
	return filepath.Join(outDir, name)
}
