package area

import (
	"fmt"
	"slices"
)

// Move is one room's displacement inside a PushResult.
type Move struct {
	ID    int
	Delta Point
}

// PushResult describes what a simulated push would do: which rooms move and
// by how much, and which unmoved rooms end up under a moved one and would have
// to be removed from the grid.
type PushResult struct {
	Moves   []Move
	Deleted []int
}

// Empty reports whether the push changes nothing.
func (r PushResult) Empty() bool { return len(r.Moves) == 0 && len(r.Deleted) == 0 }

// MovedIDs returns the ids of moved rooms in move order.
func (r PushResult) MovedIDs() []int {
	out := make([]int, len(r.Moves))
	for i, m := range r.Moves {
		out[i] = m.ID
	}
	return out
}

// MeasurePush simulates pushing id by force. The push is applied as |force.X|
// unit steps along x, then |force.Y| unit steps along y. On every step the
// pushed room drags along the rooms reachable from it through connections
// that are currently straight and would otherwise bend or break: diagonals,
// connections perpendicular to the step, and adjacent connections in the
// step's own direction. Nothing is mutated.
func (a *Area) MeasurePush(id int, force Point) (PushResult, error) {
	if _, pl := a.Locate(id); pl != Placed {
		return PushResult{}, locateErr(id, pl)
	}
	s := newPushSim(a)
	for range abs(force.X) {
		s.step(id, Point{sign(force.X), 0}, false)
	}
	for range abs(force.Y) {
		s.step(id, Point{0, sign(force.Y)}, false)
	}
	return s.resolve(), nil
}

// MeasureCompactPush simulates a single step of id in planar direction d.
// Besides the rooms MeasurePush would drag, connections crossing the mover's
// destination cell perpendicular to d pull both their endpoints along, so a
// compaction never squeezes a room into another connection's path.
func (a *Area) MeasureCompactPush(id int, d Direction) (PushResult, error) {
	if d.IsDiagonal() {
		return PushResult{}, fmt.Errorf("%w: compaction needs a planar direction, got %s", ErrInvalidDirection, d)
	}
	if _, pl := a.Locate(id); pl != Placed {
		return PushResult{}, locateErr(id, pl)
	}
	s := newPushSim(a)
	s.step(id, d.Delta(), true)
	return s.resolve(), nil
}

// ApplyPush commits r: deleted rooms leave the grid, then all moves are
// written in one batch.
func (a *Area) ApplyPush(r PushResult) error {
	for _, id := range r.Deleted {
		a.ClearPosition(id)
	}
	moves := make(map[int]Point, len(r.Moves))
	for _, m := range r.Moves {
		p, ok := a.pos[m.ID]
		if !ok {
			return fmt.Errorf("apply push: %w: %d", ErrRoomNotPlaced, m.ID)
		}
		moves[m.ID] = p.Add(m.Delta)
	}
	return a.SetPositions(moves)
}

func locateErr(id int, pl Placement) error {
	if pl == NotFound {
		return fmt.Errorf("%w: %d", ErrRoomNotFound, id)
	}
	return fmt.Errorf("%w: %d", ErrRoomNotPlaced, id)
}

type pushSim struct {
	a     *Area
	orig  map[int]Point
	pos   map[int]Point
	order []int
	moved map[int]bool
}

func newPushSim(a *Area) *pushSim {
	return &pushSim{
		a:     a,
		orig:  a.Positions(),
		pos:   a.Positions(),
		moved: make(map[int]bool),
	}
}

func (s *pushSim) step(start int, u Point, lanes bool) {
	l := s.a.Ledger()
	group := []int{start}
	in := map[int]bool{start: true}
	add := func(id int) {
		if _, placed := s.pos[id]; placed && !in[id] {
			in[id] = true
			group = append(group, id)
		}
	}
	for i := 0; i < len(group); i++ {
		r := group[i]
		rp := s.pos[r]
		for _, c := range l.ForRoom(r) {
			o, d := c.Other(r)
			op, ok := s.pos[o]
			if !ok || in[o] {
				continue
			}
			k, straight := StepsAlong(op.Sub(rp), d)
			if straight && follows(d, u, k) {
				add(o)
			}
		}
		if lanes {
			dest := rp.Add(u)
			for _, c := range s.a.PassThrough(dest.X, dest.Y) {
				dv := c.Dir.Delta()
				if !c.Dir.IsDiagonal() && dv.X*u.X+dv.Y*u.Y == 0 {
					add(c.Source)
					add(c.Target)
				}
			}
		}
	}
	for _, r := range group {
		s.pos[r] = s.pos[r].Add(u)
		if !s.moved[r] {
			s.moved[r] = true
			s.order = append(s.order, r)
		}
	}
}

// follows reports whether a neighbour reached in direction d at distance k has
// to move with a room stepping by u.
func follows(d Direction, u Point, k int) bool {
	if d.IsDiagonal() {
		return true
	}
	dv := d.Delta()
	if dv.X*u.X+dv.Y*u.Y == 0 {
		return true
	}
	return dv == u && k <= 1
}

// resolve settles collisions. A moved room landing on an earlier moved room
// is dropped back to its original cell; a moved room landing on an unmoved
// one marks the latter for deletion. Dropping a room can free or block other
// cells, so the check repeats until no room is dropped.
func (s *pushSim) resolve() PushResult {
	kept := make(map[int]bool, len(s.order))
	for _, id := range s.order {
		kept[id] = true
	}
	var deleted []int
	for {
		deleted = deleted[:0]
		occ := make(map[Point]int, len(s.orig))
		for id, p := range s.orig {
			if !kept[id] {
				occ[p] = id
			}
		}
		dropped := false
		for _, id := range s.order {
			if !kept[id] {
				continue
			}
			p := s.pos[id]
			owner, taken := occ[p]
			switch {
			case !taken:
			case kept[owner]:
				kept[id] = false
				dropped = true
			default:
				deleted = append(deleted, owner)
			}
			if dropped {
				break
			}
			occ[p] = id
		}
		if !dropped {
			break
		}
	}

	var r PushResult
	for _, id := range s.order {
		if !kept[id] {
			continue
		}
		if d := s.pos[id].Sub(s.orig[id]); d != (Point{}) {
			r.Moves = append(r.Moves, Move{ID: id, Delta: d})
		}
	}
	slices.Sort(deleted)
	r.Deleted = slices.Compact(deleted)
	return r
}
