package layout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// State is the builder's current phase.
type State int

const (
	StatePlacing State = iota
	StateRepairing
	StateCompacting
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePlacing:
		return "placing"
	case StateRepairing:
		return "repairing"
	case StateCompacting:
		return "compacting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Builder runs one layout of an area. A Builder is single use.
type Builder struct {
	opts   Options
	src    *area.Area
	work   *area.Area
	log    *log.Logger
	state  State
	queue  *Frontier

	// removed holds rooms taken off the grid by repair. They are not placed
	// again until the frontier runs dry.
	removed mapset.Set[int]
	// revisited holds rooms that already had their second chance.
	revisited mapset.Set[int]

	history         []*area.Area
	compactionStart int
}

// NewBuilder prepares a layout of a. The source area is never modified.
func NewBuilder(a *area.Area, opts Options) *Builder {
	opts.SetDefaults()
	return &Builder{
		opts:      opts,
		src:       a,
		log:       opts.Logger,
		queue:     NewFrontier(),
		removed:   mapset.New[int](),
		revisited: mapset.New[int](),
	}
}

// State returns the current phase.
func (b *Builder) State() State { return b.state }

// Steps returns the number of snapshots recorded so far.
func (b *Builder) Steps() int { return len(b.history) }

// Build runs the layout to completion. When the step ceiling is hit, the
// partial result is returned with an error wrapping ErrOutOfSteps. A
// cancelled context is checked between placements and compaction cycles.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	err := b.run(ctx)
	outOfSteps := errors.Is(err, ErrOutOfSteps)
	if b.state != StateCompacting && b.state != StateDone {
		b.compactionStart = len(b.history)
	}
	if len(b.history) == 0 {
		b.history = append(b.history, b.current().Clone())
		b.compactionStart = min(b.compactionStart, len(b.history))
	}
	res := NewResult(b.history, b.compactionStart, outOfSteps)

	rep := res.Last().Report()
	b.log.Info("layout finished",
		"area", b.src.Name,
		"rooms", res.Last().PlacedCount(),
		"steps", res.Len(),
		"non_straight", len(rep.NonStraight),
		"obstructed", len(rep.Obstructed),
		"long", len(rep.Long),
		"intersections", len(rep.Intersections),
		"out_of_steps", outOfSteps,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if err != nil {
		if outOfSteps {
			return res, fmt.Errorf("%w after %d steps", ErrOutOfSteps, res.Len())
		}
		return res, err
	}
	return res, nil
}

func (b *Builder) current() *area.Area {
	if b.work == nil {
		return b.src.Clone()
	}
	return b.work
}

func (b *Builder) run(ctx context.Context) error {
	b.work = b.src.Clone()
	b.work.ClearPositions()
	b.work.ClearMarks()

	seed, ok := b.pickSeed()
	if !ok {
		b.setState(StateDone)
		return nil
	}
	if err := b.work.SetPosition(seed, area.Point{}); err != nil {
		return err
	}
	b.queue.Push(seed)
	b.setState(StatePlacing)

	for {
		if err := b.drain(ctx); err != nil {
			return err
		}
		more, err := b.revisit()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	if err := b.snapSingleExitRooms(); err != nil {
		return err
	}

	b.compactionStart = len(b.history)
	b.setState(StateCompacting)
	if err := b.tidy(); err != nil {
		return err
	}
	if err := b.compact(ctx); err != nil {
		return err
	}
	b.setState(StateDone)
	return nil
}

// pickSeed returns the lowest id with a connection, or the lowest id when
// no room has one.
func (b *Builder) pickSeed() (int, bool) {
	ids := b.work.RoomIDs()
	if len(ids) == 0 {
		return 0, false
	}
	for _, id := range ids {
		if b.work.ConnectionCount(id) > 0 {
			return id, true
		}
	}
	return ids[0], true
}

func (b *Builder) setState(s State) {
	if b.state == s {
		return
	}
	b.log.Debug("layout state", "from", b.state, "to", s, "step", len(b.history))
	b.state = s
}

// record appends a snapshot of the working area.
func (b *Builder) record() error {
	if len(b.history) >= b.opts.MaxSteps {
		return ErrOutOfSteps
	}
	b.history = append(b.history, b.work.Clone())
	return nil
}

// ============================================================================
// Placement
// ============================================================================

func (b *Builder) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, ok := b.queue.Pop()
		if !ok {
			return nil
		}
		if err := b.placeNeighbors(id); err != nil {
			return err
		}
	}
}

func (b *Builder) placeNeighbors(id int) error {
	for _, c := range b.work.Ledger().ForRoom(id) {
		if _, pl := b.work.Locate(id); pl != area.Placed {
			// removed by a repair triggered from an earlier neighbour
			return nil
		}
		other, dir := c.Other(id)
		if b.skip(other) {
			continue
		}
		if err := b.placeRoom(id, other, dir); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) skip(id int) bool {
	if _, pl := b.work.Locate(id); pl != area.Unplaced {
		return true
	}
	return b.queue.Queued(id) || b.removed.Has(id)
}

func (b *Builder) placeRoom(from, id int, dir area.Direction) error {
	origin, _ := b.work.Locate(from)
	target := origin.Add(dir.Delta())
	if b.needsExpansion(id, target) {
		b.work.Expand(target, dir.Delta())
		b.log.Debug("expanded grid", "anchor", target, "dir", dir, "for", id)
		if err := b.record(); err != nil {
			return err
		}
		origin, _ = b.work.Locate(from)
		target = origin.Add(dir.Delta())
	}
	if err := b.work.SetPosition(id, target); err != nil {
		return fmt.Errorf("place room %d: %w", id, err)
	}
	b.queue.Push(id)
	b.log.Debug("placed room", "room", id, "at", target, "from", from, "dir", dir)
	if err := b.record(); err != nil {
		return err
	}
	return b.repair(id)
}

// needsExpansion reports whether target is taken, or whether putting id
// there would obstruct a connection that is not obstructed now.
func (b *Builder) needsExpansion(id int, target area.Point) bool {
	if _, taken := b.work.RoomAt(target.X, target.Y); taken {
		return true
	}
	before := make(map[area.ConnectionKey]bool)
	for _, c := range b.work.Report().Obstructed {
		before[c.Key()] = true
	}
	sim := b.work.Clone()
	if err := sim.SetPosition(id, target); err != nil {
		return true
	}
	for _, c := range sim.Report().Obstructed {
		if !before[c.Key()] {
			return true
		}
	}
	return false
}

// revisit gives rooms that lost their place a second chance once the
// frontier is empty. Rooms with a placed neighbour are reached again through
// that neighbour; otherwise the lowest such room is put below the current
// layout. It reports whether anything was queued.
func (b *Builder) revisit() (bool, error) {
	queued := false
	for _, id := range b.removedIDs() {
		if _, pl := b.work.Locate(id); pl == area.Placed {
			b.removed.Remove(id)
			continue
		}
		if b.revisited.Has(id) {
			continue
		}
		n, ok := b.placedNeighbor(id)
		if !ok {
			continue
		}
		b.removed.Remove(id)
		b.revisited.Put(id)
		b.queue.Push(n)
		queued = true
		b.log.Debug("requeued neighbour", "room", id, "via", n)
	}
	if queued {
		return true, nil
	}

	for _, id := range b.work.RoomIDs() {
		if _, pl := b.work.Locate(id); pl == area.Placed {
			continue
		}
		if b.work.ConnectionCount(id) == 0 || b.revisited.Has(id) {
			continue
		}
		rect := b.work.Rect()
		p := area.Point{X: rect.X, Y: rect.Bottom() + 1}
		if rect.Empty() {
			p = area.Point{}
		}
		if err := b.work.SetPosition(id, p); err != nil {
			return false, fmt.Errorf("force place room %d: %w", id, err)
		}
		b.removed.Remove(id)
		b.revisited.Put(id)
		b.queue.Push(id)
		b.log.Debug("force placed room", "room", id, "at", p)
		if err := b.record(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (b *Builder) removedIDs() []int {
	out := make([]int, 0, b.removed.Size())
	b.removed.Each(func(id int) { out = append(out, id) })
	slices.Sort(out)
	return out
}

func (b *Builder) placedNeighbor(id int) (int, bool) {
	for _, c := range b.work.Ledger().ForRoom(id) {
		o, _ := c.Other(id)
		if _, pl := b.work.Locate(o); pl == area.Placed {
			return o, true
		}
	}
	return 0, false
}

// removeRooms takes ids off the grid: one snapshot with the rooms marked,
// one with them gone.
func (b *Builder) removeRooms(ids []int, reason string) error {
	b.work.Mark(ids...)
	if err := b.record(); err != nil {
		return err
	}
	for _, id := range ids {
		b.work.ClearPosition(id)
		b.removed.Put(id)
	}
	b.work.ClearMarks()
	b.log.Debug("removed rooms", "rooms", ids, "reason", reason)
	return b.record()
}

// ============================================================================
// Finalization
// ============================================================================

// snapSingleExitRooms moves dead-end rooms next to their neighbour unless
// that makes the layout worse.
func (b *Builder) snapSingleExitRooms() error {
	sim := b.work.Clone()
	if sim.FixSingleExitRoomPlacement() == 0 {
		return nil
	}
	if sim.Report().BrokenCount() > b.work.Report().BrokenCount() {
		return nil
	}
	b.work = sim
	return b.record()
}

// tidy drops empty rows and columns left over from expansions and removals.
// Compaction commits only tidy layouts, so the final layout has no empty
// lanes unless removing them would break connections.
func (b *Builder) tidy() error {
	sim := b.work.Clone()
	if !sim.DeleteEmptyRowsAndColumns() {
		return nil
	}
	if sim.Report().BrokenCount() > b.work.Report().BrokenCount() {
		return nil
	}
	b.work = sim
	return b.record()
}
