package area

import (
	"fmt"
	"slices"
)

// ConnectionKey identifies a connection by its source room and direction.
// A room has at most one exit per direction, so the key is unique.
type ConnectionKey struct {
	Source int
	Dir    Direction
}

// Connection is a directed edge between two rooms. When both rooms carry
// matching exits (A east to B, B west to A) the ledger keeps a single
// connection and marks it TwoWay.
type Connection struct {
	Source int
	Target int
	Dir    Direction
	TwoWay bool

	obstacles []int
}

// Key returns the connection's ledger key.
func (c *Connection) Key() ConnectionKey { return ConnectionKey{c.Source, c.Dir} }

// Obstacles returns the ids of rooms blocking the connection, in order from
// source to target. It is empty unless the connection is obstructed.
func (c *Connection) Obstacles() []int { return slices.Clone(c.obstacles) }

// Other returns the room at the far end from id, and the direction that
// leads there as seen from id.
func (c *Connection) Other(id int) (int, Direction) {
	if id == c.Source {
		return c.Target, c.Dir
	}
	return c.Source, c.Dir.Opposite()
}

// Touches reports whether id is one of the connection's endpoints.
func (c *Connection) Touches(id int) bool { return c.Source == id || c.Target == id }

func (c *Connection) String() string {
	arrow := "->"
	if c.TwoWay {
		arrow = "<->"
	}
	return fmt.Sprintf("%d %s%s %d", c.Source, c.Dir, arrow, c.Target)
}

// Ledger holds every connection of an area, keyed by (source, direction).
// Lookups treat a connection and its reverse (target, opposite direction,
// source) as the same edge.
type Ledger struct {
	conns  []*Connection
	byKey  map[ConnectionKey]*Connection
	byRoom map[int][]*Connection
}

// NewLedger builds the ledger for rooms. Rooms are visited in id order and
// exits in canonical direction order, so the connection order is stable.
// Self-loops and exits to rooms outside the set are skipped.
func NewLedger(rooms []*Room) *Ledger {
	sorted := slices.Clone(rooms)
	slices.SortFunc(sorted, func(a, b *Room) int { return a.ID - b.ID })

	known := make(map[int]bool, len(sorted))
	for _, r := range sorted {
		known[r.ID] = true
	}

	l := &Ledger{
		byKey:  make(map[ConnectionKey]*Connection),
		byRoom: make(map[int][]*Connection),
	}
	for _, r := range sorted {
		for _, d := range r.Directions() {
			t := r.Exits[d]
			if t == r.ID || !known[t] {
				continue
			}
			if c, ok := l.Find(r.ID, t, d); ok {
				c.TwoWay = true
				continue
			}
			c := &Connection{Source: r.ID, Target: t, Dir: d}
			l.conns = append(l.conns, c)
			l.byKey[c.Key()] = c
			l.byRoom[r.ID] = append(l.byRoom[r.ID], c)
			l.byRoom[t] = append(l.byRoom[t], c)
		}
	}
	return l
}

// Find returns the connection source -d-> target, or its reverse.
func (l *Ledger) Find(source, target int, d Direction) (*Connection, bool) {
	if c, ok := l.byKey[ConnectionKey{source, d}]; ok && c.Target == target {
		return c, true
	}
	if c, ok := l.byKey[ConnectionKey{target, d.Opposite()}]; ok && c.Target == source {
		return c, true
	}
	return nil, false
}

// Get returns the connection stored under key.
func (l *Ledger) Get(key ConnectionKey) (*Connection, bool) {
	c, ok := l.byKey[key]
	return c, ok
}

// All returns every connection ordered by source id, then direction.
func (l *Ledger) All() []*Connection { return l.conns }

// Len returns the number of distinct connections.
func (l *Ledger) Len() int { return len(l.conns) }

// ForRoom returns the connections that start or end at id.
func (l *Ledger) ForRoom(id int) []*Connection { return l.byRoom[id] }

// Between returns every connection joining a and b, in either orientation.
func (l *Ledger) Between(a, b int) []*Connection {
	var out []*Connection
	for _, c := range l.byRoom[a] {
		if c.Touches(b) {
			out = append(out, c)
		}
	}
	return out
}

func (l *Ledger) clone() *Ledger {
	cp := &Ledger{
		conns:  make([]*Connection, len(l.conns)),
		byKey:  make(map[ConnectionKey]*Connection, len(l.byKey)),
		byRoom: make(map[int][]*Connection, len(l.byRoom)),
	}
	for i, c := range l.conns {
		n := &Connection{Source: c.Source, Target: c.Target, Dir: c.Dir, TwoWay: c.TwoWay}
		cp.conns[i] = n
		cp.byKey[n.Key()] = n
		cp.byRoom[n.Source] = append(cp.byRoom[n.Source], n)
		cp.byRoom[n.Target] = append(cp.byRoom[n.Target], n)
	}
	return cp
}

func (l *Ledger) resetObstacles() {
	for _, c := range l.conns {
		c.obstacles = nil
	}
}
