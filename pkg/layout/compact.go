package layout

import (
	"context"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// compactionOrder is the fixed order of compaction directions.
var compactionOrder = []area.Direction{area.East, area.South, area.West, area.North}

// compact squeezes the layout until a full round over all four directions
// commits nothing.
func (b *Builder) compact(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed := false
		for _, d := range compactionOrder {
			c, err := b.compactDirection(d)
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

func (b *Builder) compactDirection(d area.Direction) (bool, error) {
	changed := false
	for {
		progress := false
		for _, id := range edgeRooms(b.work, d) {
			for {
				ok, err := b.tryCompactPush(id, d)
				if err != nil {
					return changed, err
				}
				if !ok {
					break
				}
				progress = true
			}
		}
		if !progress {
			return changed, nil
		}
		changed = true
	}
}

// edgeRooms returns the rooms on the side of the layout opposite to d, the
// ones a push in direction d moves inwards.
func edgeRooms(a *area.Area, d area.Direction) []int {
	rect := a.Rect()
	if rect.Empty() {
		return nil
	}
	var out []int
	for _, id := range a.PlacedIDs() {
		p, _ := a.Locate(id)
		var edge bool
		switch d {
		case area.East:
			edge = p.X == rect.X
		case area.West:
			edge = p.X == rect.Right()-1
		case area.South:
			edge = p.Y == rect.Y
		case area.North:
			edge = p.Y == rect.Bottom()-1
		}
		if edge {
			out = append(out, id)
		}
	}
	return out
}

// tryCompactPush commits a one-step push of id in direction d when it keeps
// every room, does not add broken connections, does not grow the layout and
// strictly lowers its potential.
func (b *Builder) tryCompactPush(id int, d area.Direction) (bool, error) {
	if _, pl := b.work.Locate(id); pl != area.Placed {
		return false, nil
	}
	push, err := b.work.MeasureCompactPush(id, d)
	if err != nil || len(push.Deleted) > 0 || len(push.Moves) == 0 {
		return false, nil
	}
	sim := b.work.Clone()
	if err := sim.ApplyPush(push); err != nil {
		return false, nil
	}
	sim.DeleteEmptyRowsAndColumns()

	before, after := b.work.Report(), sim.Report()
	if len(after.Obstructed) > len(before.Obstructed) ||
		len(after.NonStraight) > len(before.NonStraight) ||
		len(after.Long) > len(before.Long) {
		return false, nil
	}
	rb, ra := b.work.Rect(), sim.Rect()
	if ra.Width > rb.Width || ra.Height > rb.Height {
		return false, nil
	}
	if !lowerPotential(sim, b.work) {
		return false, nil
	}
	if area.Equal(b.work, sim) {
		return false, nil
	}
	b.work = sim
	return true, b.record()
}

// lowerPotential reports whether x is strictly better packed than y:
// smaller bounding area, or the same area with shorter connections.
func lowerPotential(x, y *area.Area) bool {
	ax, ay := x.Rect().Area(), y.Rect().Area()
	if ax != ay {
		return ax < ay
	}
	return x.TotalConnectionLength() < y.TotalConnectionLength()
}
