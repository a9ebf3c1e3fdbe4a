package area

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Expand opens an empty lane at anchor. For each non-zero component of v,
// every placed room whose coordinate on that axis is at or beyond anchor in
// the direction of v moves one cell further that way. The anchor cell is
// always vacated.
func (a *Area) Expand(anchor, v Point) {
	sx, sy := sign(v.X), sign(v.Y)
	if sx == 0 && sy == 0 {
		return
	}
	moves := make(map[int]Point, len(a.pos))
	for id, p := range a.pos {
		q := p
		if sx != 0 && p.X*sx >= anchor.X*sx {
			q.X += sx
		}
		if sy != 0 && p.Y*sy >= anchor.Y*sy {
			q.Y += sy
		}
		moves[id] = q
	}
	a.replacePositions(moves)
}

// Shift translates every placed room by d.
func (a *Area) Shift(d Point) {
	if d == (Point{}) {
		return
	}
	moves := make(map[int]Point, len(a.pos))
	for id, p := range a.pos {
		moves[id] = p.Add(d)
	}
	a.replacePositions(moves)
}

// DeleteEmptyRowsAndColumns removes every row and column inside the bounding
// box that holds no room, closing the gaps towards the box's top-left corner.
// It reports whether anything moved.
func (a *Area) DeleteEmptyRowsAndColumns() bool {
	if len(a.pos) == 0 {
		return false
	}
	rect := a.Rect()
	usedX := make([]bool, rect.Width)
	usedY := make([]bool, rect.Height)
	for _, p := range a.pos {
		usedX[p.X-rect.X] = true
		usedY[p.Y-rect.Y] = true
	}
	mapX, gapsX := compress(usedX, rect.X)
	mapY, gapsY := compress(usedY, rect.Y)
	if gapsX == 0 && gapsY == 0 {
		return false
	}
	moves := make(map[int]Point, len(a.pos))
	for id, p := range a.pos {
		moves[id] = Point{mapX[p.X-rect.X], mapY[p.Y-rect.Y]}
	}
	a.replacePositions(moves)
	return true
}

func compress(used []bool, origin int) ([]int, int) {
	out := make([]int, len(used))
	next, gaps := origin, 0
	for i, u := range used {
		out[i] = next
		if u {
			next++
		} else {
			gaps++
		}
	}
	return out, gaps
}

// FixSingleExitRoomPlacement moves every room with exactly one connection
// next to its neighbour, when the adjacent cell in the connection's direction
// is free. It returns the number of rooms moved.
func (a *Area) FixSingleExitRoomPlacement() int {
	l := a.Ledger()
	fixed := 0
	for _, id := range a.ids {
		conns := l.ForRoom(id)
		if len(conns) != 1 {
			continue
		}
		p, ok := a.pos[id]
		if !ok {
			continue
		}
		other, d := conns[0].Other(id)
		op, ok := a.pos[other]
		if !ok {
			continue
		}
		want := op.Add(d.Opposite().Delta())
		if want == p {
			continue
		}
		if _, taken := a.occ[want]; taken {
			continue
		}
		a.place(id, want)
		fixed++
	}
	if fixed > 0 {
		a.invalidate()
	}
	return fixed
}

// replacePositions swaps in a complete new position set that is known to be
// collision free.
func (a *Area) replacePositions(moves map[int]Point) {
	a.occ = make(map[Point]int, len(moves))
	for id, p := range moves {
		a.pos[id] = p
		a.occ[p] = id
	}
	a.invalidate()
}

// GroupConnectedPositionedRooms splits the placed rooms into parts joined by
// connections whose endpoints are both placed. Parts are sorted ascending by
// size, then by lowest id; ids inside a part are ascending.
func (a *Area) GroupConnectedPositionedRooms() [][]int {
	l := a.Ledger()
	seen := mapset.New[int]()
	var groups [][]int
	for _, start := range a.PlacedIDs() {
		if seen.Has(start) {
			continue
		}
		seen.Put(start)
		group := []int{start}
		for i := 0; i < len(group); i++ {
			for _, c := range l.ForRoom(group[i]) {
				o, _ := c.Other(group[i])
				if _, placed := a.pos[o]; !placed || seen.Has(o) {
					continue
				}
				seen.Put(o)
				group = append(group, o)
			}
		}
		slices.Sort(group)
		groups = append(groups, group)
	}
	slices.SortStableFunc(groups, func(x, y []int) int {
		if len(x) != len(y) {
			return len(x) - len(y)
		}
		return x[0] - y[0]
	})
	return groups
}

// Equal reports whether a and b draw the same grid once empty rows and
// columns are removed from both. Only cell occupancy is compared.
func Equal(a, b *Area) bool {
	x, y := a.Clone(), b.Clone()
	x.DeleteEmptyRowsAndColumns()
	y.DeleteEmptyRowsAndColumns()
	rx, ry := x.Rect(), y.Rect()
	if rx.Width != ry.Width || rx.Height != ry.Height {
		return false
	}
	for dy := 0; dy < rx.Height; dy++ {
		for dx := 0; dx < rx.Width; dx++ {
			i, iok := x.RoomAt(rx.X+dx, rx.Y+dy)
			j, jok := y.RoomAt(ry.X+dx, ry.Y+dy)
			if iok != jok || i != j {
				return false
			}
		}
	}
	return true
}
