package area

import (
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Area is the aggregate the layout works on: the room set, the optional grid
// position of every room, and a set of marked rooms used to highlight the
// subject of the next mutation in snapshots.
//
// Every position write drops the derived view (bounding rectangle, cell
// grid, pass-through lanes and connection report). Reading any derived
// property recomputes it on demand. An Area is not safe for concurrent use;
// use Clone to explore moves on an independent copy.
type Area struct {
	Name string

	rooms  map[int]*Room
	ids    []int
	pos    map[int]Point
	occ    map[Point]int
	marked mapset.Set[int]

	ledger *Ledger
	view   *derived
}

// New returns an empty area.
func New(name string) *Area {
	return &Area{
		Name:   name,
		rooms:  make(map[int]*Room),
		pos:    make(map[int]Point),
		occ:    make(map[Point]int),
		marked: mapset.New[int](),
	}
}

// FromRooms builds an area holding rooms. Duplicate ids are rejected.
func FromRooms(name string, rooms []*Room) (*Area, error) {
	a := New(name)
	for _, r := range rooms {
		if err := a.AddRoom(r); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// AddRoom adds r to the area without a position.
func (a *Area) AddRoom(r *Room) error {
	if _, ok := a.rooms[r.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateRoom, r.ID)
	}
	a.rooms[r.ID] = r
	i, _ := slices.BinarySearch(a.ids, r.ID)
	a.ids = slices.Insert(a.ids, i, r.ID)
	a.ledger = nil
	a.invalidate()
	return nil
}

// Validate checks that every exit targets a room of the area.
func (a *Area) Validate() error {
	for _, id := range a.ids {
		r := a.rooms[id]
		for _, d := range r.Directions() {
			if _, ok := a.rooms[r.Exits[d]]; !ok {
				return fmt.Errorf("%w: room %d exit %s -> %d", ErrDanglingConnection, id, d, r.Exits[d])
			}
		}
	}
	return nil
}

// Room returns the room with the given id.
func (a *Area) Room(id int) (*Room, bool) {
	r, ok := a.rooms[id]
	return r, ok
}

// Rooms returns every room ordered by id.
func (a *Area) Rooms() []*Room {
	out := make([]*Room, len(a.ids))
	for i, id := range a.ids {
		out[i] = a.rooms[id]
	}
	return out
}

// RoomIDs returns every room id in ascending order.
func (a *Area) RoomIDs() []int { return slices.Clone(a.ids) }

// Len returns the number of rooms, placed or not.
func (a *Area) Len() int { return len(a.ids) }

// PlacedCount returns the number of rooms with a grid position.
func (a *Area) PlacedCount() int { return len(a.pos) }

// PlacedIDs returns the ids of placed rooms in ascending order.
func (a *Area) PlacedIDs() []int {
	out := make([]int, 0, len(a.pos))
	for _, id := range a.ids {
		if _, ok := a.pos[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Ledger returns the area's connection ledger, building it on first use.
func (a *Area) Ledger() *Ledger {
	if a.ledger == nil {
		a.ledger = NewLedger(a.Rooms())
	}
	return a.ledger
}

// ConnectionCount returns how many distinct connections touch id.
func (a *Area) ConnectionCount(id int) int { return len(a.Ledger().ForRoom(id)) }

// Locate returns the position of id, distinguishing missing rooms from
// unplaced ones.
func (a *Area) Locate(id int) (Point, Placement) {
	if _, ok := a.rooms[id]; !ok {
		return Point{}, NotFound
	}
	p, ok := a.pos[id]
	if !ok {
		return Point{}, Unplaced
	}
	return p, Placed
}

// Positions returns a copy of every placed room's position.
func (a *Area) Positions() map[int]Point {
	out := make(map[int]Point, len(a.pos))
	for id, p := range a.pos {
		out[id] = p
	}
	return out
}

// ============================================================================
// Position writes
// ============================================================================

// SetPosition places id at p. The write fails if another room holds p.
func (a *Area) SetPosition(id int, p Point) error {
	if _, ok := a.rooms[id]; !ok {
		return fmt.Errorf("%w: %d", ErrRoomNotFound, id)
	}
	if other, ok := a.occ[p]; ok && other != id {
		return fmt.Errorf("%w: %s holds room %d", ErrCellOccupied, p, other)
	}
	a.place(id, p)
	a.invalidate()
	return nil
}

// SetPositions moves several rooms at once. Occupancy is checked against the
// final state, so rooms may swap or follow each other into vacated cells.
// Either every write is applied or none is.
func (a *Area) SetPositions(moves map[int]Point) error {
	if len(moves) == 0 {
		return nil
	}
	next := make(map[Point]int, len(a.occ))
	for p, id := range a.occ {
		if _, moving := moves[id]; !moving {
			next[p] = id
		}
	}
	ids := make([]int, 0, len(moves))
	for id := range moves {
		if _, ok := a.rooms[id]; !ok {
			return fmt.Errorf("%w: %d", ErrRoomNotFound, id)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := moves[id]
		if other, ok := next[p]; ok {
			return fmt.Errorf("%w: rooms %d and %d at %s", ErrCellOccupied, other, id, p)
		}
		next[p] = id
	}
	for _, id := range ids {
		if old, ok := a.pos[id]; ok && a.occ[old] == id {
			delete(a.occ, old)
		}
	}
	for _, id := range ids {
		a.pos[id] = moves[id]
		a.occ[moves[id]] = id
	}
	a.invalidate()
	return nil
}

// ClearPosition removes id from the grid. The room stays in the area.
func (a *Area) ClearPosition(id int) {
	if p, ok := a.pos[id]; ok {
		delete(a.occ, p)
		delete(a.pos, id)
		a.invalidate()
	}
}

// ClearPositions removes every room from the grid.
func (a *Area) ClearPositions() {
	a.pos = make(map[int]Point)
	a.occ = make(map[Point]int)
	a.invalidate()
}

func (a *Area) place(id int, p Point) {
	if old, ok := a.pos[id]; ok {
		delete(a.occ, old)
	}
	a.pos[id] = p
	a.occ[p] = id
}

func (a *Area) invalidate() { a.view = nil }

// ============================================================================
// Marks
// ============================================================================

// Mark highlights rooms in the next snapshot.
func (a *Area) Mark(ids ...int) {
	for _, id := range ids {
		a.marked.Put(id)
	}
}

// ClearMarks removes every highlight.
func (a *Area) ClearMarks() { a.marked = mapset.New[int]() }

// IsMarked reports whether id is highlighted.
func (a *Area) IsMarked(id int) bool { return a.marked.Has(id) }

// Marked returns the highlighted room ids in ascending order.
func (a *Area) Marked() []int {
	out := make([]int, 0, a.marked.Size())
	a.marked.Each(func(id int) { out = append(out, id) })
	slices.Sort(out)
	return out
}

// ============================================================================
// Cloning
// ============================================================================

// Clone returns an independent copy. Rooms are shared since they never change
// after being added; positions, marks and the ledger's obstacle tags are not.
func (a *Area) Clone() *Area {
	cp := &Area{
		Name:   a.Name,
		rooms:  make(map[int]*Room, len(a.rooms)),
		ids:    slices.Clone(a.ids),
		pos:    make(map[int]Point, len(a.pos)),
		occ:    make(map[Point]int, len(a.occ)),
		marked: mapset.New[int](),
	}
	for id, r := range a.rooms {
		cp.rooms[id] = r
	}
	for id, p := range a.pos {
		cp.pos[id] = p
	}
	for p, id := range a.occ {
		cp.occ[p] = id
	}
	a.marked.Each(func(id int) { cp.marked.Put(id) })
	if a.ledger != nil {
		cp.ledger = a.ledger.clone()
	}
	return cp
}
