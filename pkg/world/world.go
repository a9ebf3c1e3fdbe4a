// Package world reads and writes world descriptions: named areas of rooms
// with up to six exits each, as found in MUD world files.
//
// A world is the input of a layout. It can be decoded from YAML or JSON,
// checked with [World.Validate], cleaned with [World.Sanitize] and turned
// into an [area.Area] with [World.ToArea].
//
//	name: Midgaard
//	rooms:
//	  - id: 3001
//	    name: The Temple Of Midgaard
//	    exits: { north: 3005, south: 3013, up: 3100 }
package world

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

var (
	// ErrDuplicateRoomID is returned when two rooms share an id.
	ErrDuplicateRoomID = errors.New("duplicate room id")

	// ErrDanglingExit is returned when an exit targets a room that is not
	// part of the world.
	ErrDanglingExit = errors.New("exit targets unknown room")

	// ErrInvalidRoom is returned for negative ids and unknown exit names.
	ErrInvalidRoom = errors.New("invalid room")
)

// World is a named set of rooms.
type World struct {
	Name  string `json:"name" yaml:"name" bson:"name"`
	Rooms []Room `json:"rooms" yaml:"rooms" bson:"rooms"`
}

// Room is one room of a world file. Exit keys are direction names; both full
// names and single letters are accepted in any case.
type Room struct {
	ID    int            `json:"id" yaml:"id" bson:"id"`
	Name  string         `json:"name" yaml:"name" bson:"name"`
	Exits map[string]int `json:"exits,omitempty" yaml:"exits,omitempty" bson:"exits,omitempty"`
}

// Clone returns a deep copy of w.
func (w *World) Clone() *World {
	c := &World{Name: w.Name, Rooms: make([]Room, len(w.Rooms))}
	for i, r := range w.Rooms {
		c.Rooms[i] = Room{ID: r.ID, Name: r.Name}
		if r.Exits != nil {
			c.Rooms[i].Exits = maps.Clone(r.Exits)
		}
	}
	return c
}

// Validate checks ids, exit names and exit targets.
func (w *World) Validate() error {
	ids := make(map[int]bool, len(w.Rooms))
	for _, r := range w.Rooms {
		if r.ID < 0 {
			return fmt.Errorf("%w: negative id %d", ErrInvalidRoom, r.ID)
		}
		if ids[r.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateRoomID, r.ID)
		}
		ids[r.ID] = true
	}
	for _, r := range w.Rooms {
		for name, target := range r.Exits {
			if _, err := area.ParseDirection(name); err != nil {
				return fmt.Errorf("%w: room %d: %v", ErrInvalidRoom, r.ID, err)
			}
			if !ids[target] {
				return fmt.Errorf("%w: room %d %s -> %d", ErrDanglingExit, r.ID, name, target)
			}
		}
	}
	return nil
}

// SanitizeReport counts what Sanitize removed.
type SanitizeReport struct {
	DanglingExits int
	EmptyRooms    int
}

// Sanitize removes exits to unknown rooms and exits with unknown direction
// names, then drops rooms that have neither a name nor any connection. A room
// counts as connected when it has an exit or another room has an exit to it.
func (w *World) Sanitize() SanitizeReport {
	var rep SanitizeReport
	ids := make(map[int]bool, len(w.Rooms))
	for _, r := range w.Rooms {
		ids[r.ID] = true
	}
	for i := range w.Rooms {
		r := &w.Rooms[i]
		for name, target := range r.Exits {
			if _, err := area.ParseDirection(name); err != nil || !ids[target] {
				delete(r.Exits, name)
				rep.DanglingExits++
			}
		}
	}
	linked := make(map[int]bool)
	for _, r := range w.Rooms {
		for _, target := range r.Exits {
			linked[target] = true
		}
	}
	kept := w.Rooms[:0]
	for _, r := range w.Rooms {
		if r.Name == "" && len(r.Exits) == 0 && !linked[r.ID] {
			rep.EmptyRooms++
			continue
		}
		kept = append(kept, r)
	}
	w.Rooms = kept
	return rep
}

// ToArea validates the world and converts it into an area with no room
// placed.
func (w *World) ToArea() (*area.Area, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	a := area.New(w.Name)
	for _, r := range w.Rooms {
		room := area.NewRoom(r.ID, r.Name)
		for name, target := range r.Exits {
			d, _ := area.ParseDirection(name)
			room.Connect(d, target)
		}
		if err := a.AddRoom(room); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// FromArea describes the rooms of a as a world, ordered by id with full
// lower-case direction names.
func FromArea(a *area.Area) *World {
	w := &World{Name: a.Name}
	for _, r := range a.Rooms() {
		room := Room{ID: r.ID, Name: r.Name}
		if len(r.Exits) > 0 {
			room.Exits = make(map[string]int, len(r.Exits))
			for d, target := range r.Exits {
				room.Exits[d.String()] = target
			}
		}
		w.Rooms = append(w.Rooms, room)
	}
	return w
}

// Hash returns a content hash that ignores room order and the spelling of
// direction names.
func (w *World) Hash() string {
	c := w.canonical()
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (w *World) canonical() *World {
	c := &World{Name: w.Name, Rooms: make([]Room, len(w.Rooms))}
	for i, r := range w.Rooms {
		exits := make(map[string]int, len(r.Exits))
		for name, target := range r.Exits {
			if d, err := area.ParseDirection(name); err == nil {
				exits[d.String()] = target
			} else {
				exits[name] = target
			}
		}
		c.Rooms[i] = Room{ID: r.ID, Name: r.Name, Exits: exits}
	}
	slices.SortFunc(c.Rooms, func(a, b Room) int { return a.ID - b.ID })
	return c
}

// Stats summarizes a world.
type Stats struct {
	Rooms int
	Exits int
}

// Stats counts rooms and exits.
func (w *World) Stats() Stats {
	s := Stats{Rooms: len(w.Rooms)}
	for _, r := range w.Rooms {
		s.Exits += len(r.Exits)
	}
	return s
}
