package area

import "slices"

// ConnectionReport classifies every connection whose endpoints are both
// placed. Each list follows ledger order (source id, then direction).
type ConnectionReport struct {
	// Normal connections run straight and unblocked. Planar connections
	// stretched over several empty cells count as normal.
	Normal []*Connection
	// NonStraight connections point the wrong way or off axis.
	NonStraight []*Connection
	// Obstructed connections are straight but pass through other rooms.
	Obstructed []*Connection
	// Long connections are unblocked Up/Down diagonals spanning more than
	// one step.
	Long []*Connection
	// Intersections share a pass-through cell with another connection.
	// A connection may appear here and in one of the lists above.
	Intersections []*Connection
}

// BrokenCount is the number of connections that are not drawn cleanly.
func (r ConnectionReport) BrokenCount() int {
	return len(r.NonStraight) + len(r.Obstructed) + len(r.Long)
}

// Total returns the number of classified connections, ignoring intersections.
func (r ConnectionReport) Total() int {
	return len(r.Normal) + len(r.NonStraight) + len(r.Obstructed) + len(r.Long)
}

func (r ConnectionReport) clone() ConnectionReport {
	return ConnectionReport{
		Normal:        slices.Clone(r.Normal),
		NonStraight:   slices.Clone(r.NonStraight),
		Obstructed:    slices.Clone(r.Obstructed),
		Long:          slices.Clone(r.Long),
		Intersections: slices.Clone(r.Intersections),
	}
}

// derived is the lazily computed view of an area's positions.
type derived struct {
	rect   Rectangle
	cells  []int
	lanes  [][]*Connection
	report ConnectionReport
}

func (v *derived) index(p Point) (int, bool) {
	if !v.rect.Contains(p) {
		return 0, false
	}
	return (p.Y-v.rect.Y)*v.rect.Width + (p.X - v.rect.X), true
}

func (v *derived) roomAt(p Point) (int, bool) {
	i, ok := v.index(p)
	if !ok || v.cells[i] < 0 {
		return 0, false
	}
	return v.cells[i], true
}

func (a *Area) derive() *derived {
	if a.view != nil {
		return a.view
	}
	v := &derived{rect: boundingRect(a.pos)}
	n := v.rect.Area()
	v.cells = make([]int, n)
	for i := range v.cells {
		v.cells[i] = -1
	}
	v.lanes = make([][]*Connection, n)
	for id, p := range a.pos {
		i, _ := v.index(p)
		v.cells[i] = id
	}
	a.classify(v)
	a.view = v
	return v
}

func boundingRect(pos map[int]Point) Rectangle {
	if len(pos) == 0 {
		return Rectangle{}
	}
	first := true
	var lo, hi Point
	for _, p := range pos {
		if first {
			lo, hi = p, p
			first = false
			continue
		}
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return Rectangle{X: lo.X, Y: lo.Y, Width: hi.X - lo.X + 1, Height: hi.Y - lo.Y + 1}
}

func (a *Area) classify(v *derived) {
	l := a.Ledger()
	l.resetObstacles()

	var rep ConnectionReport
	clean := make(map[*Connection]bool)
	for _, c := range l.All() {
		sp, ok := a.pos[c.Source]
		if !ok {
			continue
		}
		tp, ok := a.pos[c.Target]
		if !ok {
			continue
		}
		steps, straight := StepsAlong(tp.Sub(sp), c.Dir)
		if !straight {
			rep.NonStraight = append(rep.NonStraight, c)
			continue
		}
		unit := c.Dir.Delta()
		for i := 1; i < steps; i++ {
			cell := sp.Add(unit.Mul(i))
			if id, ok := v.roomAt(cell); ok {
				if !a.exempt(id, c.Dir.Axis()) {
					c.obstacles = append(c.obstacles, id)
				}
				continue
			}
			j, _ := v.index(cell)
			v.lanes[j] = append(v.lanes[j], c)
		}
		switch {
		case len(c.obstacles) > 0:
			rep.Obstructed = append(rep.Obstructed, c)
		case c.Dir.IsDiagonal() && steps > 1:
			rep.Long = append(rep.Long, c)
			clean[c] = true
		default:
			rep.Normal = append(rep.Normal, c)
			clean[c] = true
		}
	}

	kept := rep.NonStraight[:0]
	for _, c := range rep.NonStraight {
		if !hasCleanAlternative(l, c, clean) {
			kept = append(kept, c)
		}
	}
	rep.NonStraight = kept

	crossing := make(map[*Connection]bool)
	for _, lane := range v.lanes {
		if len(lane) < 2 {
			continue
		}
		for _, c := range lane {
			crossing[c] = true
		}
	}
	for _, c := range l.All() {
		if crossing[c] {
			rep.Intersections = append(rep.Intersections, c)
		}
	}
	v.report = rep
}

// exempt reports whether room id may sit on a line running along axis: a room
// whose only connection runs the same way cannot step aside without breaking
// that connection.
func (a *Area) exempt(id int, axis Axis) bool {
	conns := a.Ledger().ForRoom(id)
	return len(conns) == 1 && conns[0].Dir.Axis() == axis
}

func hasCleanAlternative(l *Ledger, c *Connection, clean map[*Connection]bool) bool {
	for _, o := range l.Between(c.Source, c.Target) {
		if o != c && clean[o] {
			return true
		}
	}
	return false
}

// ============================================================================
// Derived reads
// ============================================================================

// Rect returns the tight bounding box of all placed rooms.
func (a *Area) Rect() Rectangle { return a.derive().rect }

// RoomAt returns the room occupying cell (x, y).
func (a *Area) RoomAt(x, y int) (int, bool) { return a.derive().roomAt(Point{x, y}) }

// PassThrough returns the connections crossing the empty cell (x, y) without
// ending there.
func (a *Area) PassThrough(x, y int) []*Connection {
	v := a.derive()
	i, ok := v.index(Point{x, y})
	if !ok {
		return nil
	}
	return slices.Clone(v.lanes[i])
}

// Report returns the classification of every connection between placed
// rooms. The result is a copy and may be kept across mutations, but the
// connections' obstacle tags reflect the latest computation only.
func (a *Area) Report() ConnectionReport { return a.derive().report.clone() }

// TotalConnectionLength sums the Manhattan length of every connection
// between placed rooms.
func (a *Area) TotalConnectionLength() int {
	total := 0
	for _, c := range a.Ledger().All() {
		sp, ok1 := a.pos[c.Source]
		tp, ok2 := a.pos[c.Target]
		if ok1 && ok2 {
			total += tp.Sub(sp).Manhattan()
		}
	}
	return total
}
