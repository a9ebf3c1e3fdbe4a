package layout

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// repair runs the enabled passes in order until a full round changes
// nothing. justPlaced is never removed by the intersection pass.
func (b *Builder) repair(justPlaced int) error {
	b.setState(StateRepairing)
	defer b.setState(StatePlacing)
	for {
		changed := false
		if b.opts.FixObstacles {
			c, err := b.removeObstacles()
			if err != nil {
				return err
			}
			changed = changed || c
		}
		if b.opts.FixNonStraight {
			c, err := b.straighten()
			if err != nil {
				return err
			}
			changed = changed || c
		}
		if b.opts.FixIntersections {
			c, err := b.removeIntersections(justPlaced)
			if err != nil {
				return err
			}
			changed = changed || c
		}
		if !changed {
			return nil
		}
	}
}

func (b *Builder) removeObstacles() (bool, error) {
	changed := false
	for {
		rep := b.work.Report()
		if len(rep.Obstructed) == 0 {
			return changed, nil
		}
		list := BuildRemoveList(b.work, rep.Obstructed[0].Obstacles())
		if err := b.removeRooms(list, "obstacle"); err != nil {
			return changed, err
		}
		changed = true
	}
}

// BuildRemoveList returns seeds plus the fragments that removing them cuts off
// and that are smaller than FragmentThreshold. Only parts holding a seed are
// split up; the largest fragment of each stays. Parts that share no
// connection with any seed are never included. The result is sorted.
func BuildRemoveList(a *area.Area, seeds []int) []int {
	out := mapset.New[int]()
	for _, id := range seeds {
		out.Put(id)
	}

	part := make(map[int]int)
	for i, g := range a.GroupConnectedPositionedRooms() {
		if !slices.ContainsFunc(g, out.Has) {
			continue
		}
		for _, id := range g {
			part[id] = i
		}
	}

	sim := a.Clone()
	for _, id := range seeds {
		sim.ClearPosition(id)
	}
	// fragments come smallest first, so walking backwards meets the
	// largest fragment of each part before the others
	kept := make(map[int]bool)
	frags := sim.GroupConnectedPositionedRooms()
	for i := len(frags) - 1; i >= 0; i-- {
		g := frags[i]
		p, ok := part[g[0]]
		if !ok {
			continue
		}
		if !kept[p] {
			kept[p] = true
			continue
		}
		if len(g) >= FragmentThreshold {
			continue
		}
		for _, id := range g {
			out.Put(id)
		}
	}

	list := make([]int, 0, out.Size())
	out.Each(func(id int) { list = append(list, id) })
	slices.Sort(list)
	return list
}

// candidate is a push evaluated on a clone.
type candidate struct {
	push        area.PushResult
	obstructed  int
	nonStraight int
	removed     int
}

// better orders candidates by obstructed count, then non-straight count,
// then number of removed rooms.
func (c candidate) better(o candidate) bool {
	if c.obstructed != o.obstructed {
		return c.obstructed < o.obstructed
	}
	if c.nonStraight != o.nonStraight {
		return c.nonStraight < o.nonStraight
	}
	return c.removed < o.removed
}

func (b *Builder) straighten() (bool, error) {
	changed := false
	for {
		rep := b.work.Report()
		if len(rep.NonStraight) == 0 {
			return changed, nil
		}
		committed := false
		for _, c := range rep.NonStraight {
			best, ok := b.bestStraightening(c, len(rep.NonStraight))
			if !ok {
				continue
			}
			if err := b.commitPush(best.push); err != nil {
				return changed, err
			}
			b.log.Debug("straightened connection", "conn", c.String(), "moved", len(best.push.Moves), "removed", best.push.Deleted)
			committed = true
			break
		}
		if !committed {
			return changed, nil
		}
		changed = true
	}
}

// bestStraightening tries moving the target onto the source's line and the
// source onto the target's line. Only pushes that lower the non-straight
// count qualify; the target push wins ties.
func (b *Builder) bestStraightening(c *area.Connection, current int) (candidate, bool) {
	sp, _ := b.work.Locate(c.Source)
	tp, _ := b.work.Locate(c.Target)
	options := []struct {
		room  int
		force area.Point
	}{
		{c.Target, area.StraightPosition(sp, tp, c.Dir).Sub(tp)},
		{c.Source, area.StraightPosition(tp, sp, c.Dir.Opposite()).Sub(sp)},
	}

	var best candidate
	found := false
	for _, o := range options {
		if o.force == (area.Point{}) {
			continue
		}
		push, err := b.work.MeasurePush(o.room, o.force)
		if err != nil || push.Empty() {
			continue
		}
		sim := b.work.Clone()
		if err := sim.ApplyPush(push); err != nil {
			continue
		}
		rep := sim.Report()
		cand := candidate{
			push:        push,
			obstructed:  len(rep.Obstructed),
			nonStraight: len(rep.NonStraight),
			removed:     len(push.Deleted),
		}
		if cand.nonStraight >= current {
			continue
		}
		if !found || cand.better(best) {
			best, found = cand, true
		}
	}
	return best, found
}

// commitPush applies a push with a marked snapshot before and a clean one
// after.
func (b *Builder) commitPush(push area.PushResult) error {
	b.work.Mark(push.MovedIDs()...)
	b.work.Mark(push.Deleted...)
	if err := b.record(); err != nil {
		return err
	}
	if err := b.work.ApplyPush(push); err != nil {
		return err
	}
	for _, id := range push.Deleted {
		b.removed.Put(id)
	}
	b.work.ClearMarks()
	return b.record()
}

func (b *Builder) removeIntersections(justPlaced int) (bool, error) {
	changed := false
	for {
		rep := b.work.Report()
		if len(rep.Intersections) == 0 {
			return changed, nil
		}
		c := rep.Intersections[0]
		current := len(rep.Intersections)
		done := false
		for _, id := range []int{c.Source, c.Target} {
			if id == justPlaced {
				continue
			}
			list := BuildRemoveList(b.work, []int{id})
			sim := b.work.Clone()
			for _, r := range list {
				sim.ClearPosition(r)
			}
			if len(sim.Report().Intersections) >= current {
				continue
			}
			if err := b.removeRooms(list, "intersection"); err != nil {
				return changed, err
			}
			done = true
			break
		}
		if !done {
			return changed, nil
		}
		changed = true
	}
}
