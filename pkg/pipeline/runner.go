package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/cache"
	mmberrors "github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/errors"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/layout"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/observability"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/render"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/store"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/world"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state; several goroutines may share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger

	// TTL applies to cache writes. Zero means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer means the default keyer, a nil
// cache disables caching and a nil store keeps histories in memory.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: st, Logger: logger}
}

// Run is the outcome of a layout stage.
type Run struct {
	// Key is the layout cache key.
	Key      string
	Document *history.Document
	Result   *layout.Result
	CacheHit bool
	Duration time.Duration
	Removed  world.SanitizeReport
}

// Report classifies the connections of the final snapshot.
func (r *Run) Report() area.ConnectionReport { return r.Result.Last().Report() }

// Layout builds the layout history of w, or loads it from the cache. A run
// that hits the step ceiling is not an error; Result.OutOfSteps reports it.
// w is not modified.
func (r *Runner) Layout(ctx context.Context, w *world.World, opts Options) (*Run, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, mmberrors.Wrap(mmberrors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	run := &Run{}
	if opts.Sanitize {
		w = w.Clone()
		run.Removed = w.Sanitize()
		if run.Removed != (world.SanitizeReport{}) {
			opts.Logger.Warn("sanitized world",
				"dangling_exits", run.Removed.DanglingExits,
				"empty_rooms", run.Removed.EmptyRooms)
		}
	}
	if err := w.Validate(); err != nil {
		return nil, worldError(err)
	}

	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, w.Name, len(w.Rooms))
	run.Key = r.Keyer.LayoutKey(w.Hash(), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if doc, res, ok := r.cachedLayout(ctx, run.Key); ok {
			run.Document, run.Result, run.CacheHit = doc, res, true
			run.Duration = time.Since(start)
			observability.Layout().OnLayoutComplete(ctx, w.Name, res.Len(), run.Duration, nil)
			opts.Logger.Debug("layout cache hit", "area", w.Name, "steps", res.Len())
			return run, nil
		}
	}

	a, err := w.ToArea()
	if err != nil {
		return nil, worldError(err)
	}
	res, err := layout.NewBuilder(a, opts.LayoutOptions()).Build(ctx)
	if err != nil && !errors.Is(err, layout.ErrOutOfSteps) {
		observability.Layout().OnLayoutComplete(ctx, w.Name, 0, time.Since(start), err)
		return nil, err
	}
	if res.OutOfSteps() {
		opts.Logger.Warn("layout ran out of steps", "area", w.Name, "max_steps", opts.MaxSteps)
	}

	run.Result = res
	run.Document = history.FromResult(res, opts.MaxSteps)
	run.Duration = time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, w.Name, res.Len(), run.Duration, nil)

	if data, err := history.Marshal(run.Document); err == nil {
		if err := r.Cache.Set(ctx, run.Key, data, r.ttl()); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return run, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (*history.Document, *layout.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, nil, false
	}
	doc, err := history.Unmarshal(data)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, nil, false
	}
	res, err := doc.ToResult()
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return doc, res, true
}

// Render draws snapshot step of res. A negative step selects the last
// snapshot.
func (r *Runner) Render(ctx context.Context, res *layout.Result, step int, f render.Format, opts Options) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, mmberrors.Wrap(mmberrors.ErrCodeInvalidInput, err, "invalid options")
	}
	if step < 0 {
		step = res.Len() - 1
	}
	if err := mmberrors.ValidateStep(step, res.Len()); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Layout().OnRenderStart(ctx, string(f), step)
	data, err := render.Render(ctx, res.Snapshot(step), f, opts.RenderOptions())
	observability.Layout().OnRenderComplete(ctx, string(f), len(data), time.Since(start), err)
	if errors.Is(err, render.ErrUnknownFormat) {
		return nil, mmberrors.Wrap(mmberrors.ErrCodeInvalidFormat, err, "cannot render %q", f)
	}
	return data, err
}

// RenderRun renders a snapshot of run, caching the artifact under the run's
// layout key.
func (r *Runner) RenderRun(ctx context.Context, run *Run, step int, f render.Format, opts Options) ([]byte, error) {
	if step < 0 {
		step = run.Result.Len() - 1
	}
	key := r.Keyer.ArtifactKey(run.Key, opts.ArtifactKeyOpts(step, f))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, err := r.Render(ctx, run.Result, step, f, opts)
	if err != nil {
		return nil, err
	}
	if err := r.Cache.Set(ctx, key, data, r.ttl()); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, nil
}

// Save stores the run's history and returns its id.
func (r *Runner) Save(ctx context.Context, run *Run) (string, error) {
	start := time.Now()
	id, err := r.Store.Save(ctx, run.Document)
	observability.Store().OnSave(ctx, id, len(run.Document.Snapshots), time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("save layout: %w", err)
	}
	r.Logger.Debug("saved layout", "id", id, "steps", len(run.Document.Snapshots))
	return id, nil
}

// Load fetches a stored history and rebuilds its result. Renderings of the
// returned run are cached under the history id.
func (r *Runner) Load(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	doc, err := r.Store.Load(ctx, id)
	observability.Store().OnLoad(ctx, id, time.Since(start), err)
	if errors.Is(err, store.ErrNotFound) {
		return nil, mmberrors.Wrap(mmberrors.ErrCodeLayoutNotFound, err, "layout %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	run, err := RunFromDocument(doc)
	if err != nil {
		return nil, mmberrors.Wrap(mmberrors.ErrCodeInvalidFormat, err, "layout %s is corrupt", id)
	}
	return run, nil
}

// RunFromDocument rebuilds a run from a stored or saved history. Renderings
// are keyed by the history id, or by world hash and creation time for
// histories that were never stored.
func RunFromDocument(doc *history.Document) (*Run, error) {
	res, err := doc.ToResult()
	if err != nil {
		return nil, err
	}
	key := "history:" + doc.ID
	if doc.ID == "" {
		key = fmt.Sprintf("file:%s:%d", doc.WorldHash, doc.CreatedAt.UnixNano())
	}
	return &Run{
		Key:      key,
		Document: doc,
		Result:   res,
	}, nil
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	return errors.Join(r.Cache.Close(), r.Store.Close())
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.DefaultTTL
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func worldError(err error) error {
	switch {
	case errors.Is(err, world.ErrDuplicateRoomID):
		return mmberrors.Wrap(mmberrors.ErrCodeDuplicateRoom, err, "invalid world")
	case errors.Is(err, world.ErrDanglingExit):
		return mmberrors.Wrap(mmberrors.ErrCodeDanglingExit, err, "invalid world")
	}
	return mmberrors.Wrap(mmberrors.ErrCodeInvalidWorld, err, "invalid world")
}
