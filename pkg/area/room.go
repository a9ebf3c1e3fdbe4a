package area

import "errors"

var (
	// ErrRoomNotFound is returned when a room id is not part of the area.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomNotPlaced is returned when an operation needs a grid position
	// for a room that has none.
	ErrRoomNotPlaced = errors.New("room not placed")

	// ErrCellOccupied is returned when a position write would put two rooms
	// into the same cell. The write is not applied.
	ErrCellOccupied = errors.New("cell occupied")

	// ErrDuplicateRoom is returned by AddRoom when the id is already taken.
	ErrDuplicateRoom = errors.New("duplicate room id")

	// ErrDanglingConnection is returned by Validate when an exit points at a
	// room that is not part of the area.
	ErrDanglingConnection = errors.New("connection target not found")

	// ErrInvalidDirection is returned when a direction name cannot be parsed.
	ErrInvalidDirection = errors.New("invalid direction")
)

// Placement is the outcome of looking a room up on the grid. It separates a
// room that does not exist from one that exists but has no position.
type Placement int

const (
	NotFound Placement = iota
	Unplaced
	Placed
)

func (p Placement) String() string {
	switch p {
	case Unplaced:
		return "unplaced"
	case Placed:
		return "placed"
	}
	return "not found"
}

// Room is a node of the world graph. Rooms are immutable once added to an
// Area; positions live on the Area, not on the room.
type Room struct {
	ID    int
	Name  string
	Exits map[Direction]int
}

// NewRoom returns a room without exits.
func NewRoom(id int, name string) *Room {
	return &Room{ID: id, Name: name, Exits: make(map[Direction]int)}
}

// Connect adds or replaces the exit in direction d. It returns the room so
// construction can be chained.
func (r *Room) Connect(d Direction, target int) *Room {
	if r.Exits == nil {
		r.Exits = make(map[Direction]int)
	}
	r.Exits[d] = target
	return r
}

// Exit returns the target of the exit in direction d.
func (r *Room) Exit(d Direction) (int, bool) {
	t, ok := r.Exits[d]
	return t, ok
}

// Directions returns the room's exit directions in canonical order.
func (r *Room) Directions() []Direction {
	out := make([]Direction, 0, len(r.Exits))
	for _, d := range AllDirections {
		if _, ok := r.Exits[d]; ok {
			out = append(out, d)
		}
	}
	return out
}
