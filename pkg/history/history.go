// Package history stores layout runs: the rooms of the area plus the grid
// positions and marks of every snapshot.
//
// Documents are serialized as JSON and written zstd-compressed to ".mmbh"
// files. The same document shape is stored in MongoDB by the store package.
package history

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/layout"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/world"
)

// Version is the current document format version.
const Version = 1

// Extension is the file extension of compressed history files.
const Extension = ".mmbh"

// ErrEmptyHistory is returned when a document holds no snapshots.
var ErrEmptyHistory = errors.New("history has no snapshots")

// Document is the serialized form of a layout result.
type Document struct {
	Version         int          `json:"version" bson:"version"`
	ID              string       `json:"id" bson:"_id"`
	Name            string       `json:"name" bson:"name"`
	CreatedAt       time.Time    `json:"created_at" bson:"created_at"`
	WorldHash       string       `json:"world_hash,omitempty" bson:"world_hash,omitempty"`
	MaxSteps        int          `json:"max_steps" bson:"max_steps"`
	Steps           int          `json:"steps" bson:"steps"`
	OutOfSteps      bool         `json:"out_of_steps" bson:"out_of_steps"`
	CompactionStart int          `json:"compaction_start" bson:"compaction_start"`
	Rooms           []world.Room `json:"rooms" bson:"rooms"`
	Snapshots       []Snapshot   `json:"snapshots" bson:"snapshots"`
}

// Snapshot is one recorded layout state.
type Snapshot struct {
	Rooms  []Position `json:"rooms" bson:"rooms"`
	Marked []int      `json:"marked,omitempty" bson:"marked,omitempty"`
}

// Position places one room.
type Position struct {
	ID int `json:"id" bson:"id"`
	X  int `json:"x" bson:"x"`
	Y  int `json:"y" bson:"y"`
}

// Summary is the listing view of a document.
type Summary struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	Steps      int       `json:"steps" bson:"steps"`
	OutOfSteps bool      `json:"out_of_steps" bson:"out_of_steps"`
}

// FromResult captures res. The room list is taken from the first snapshot;
// all snapshots share the same rooms.
func FromResult(res *layout.Result, maxSteps int) *Document {
	first := res.Snapshot(0)
	w := world.FromArea(first)
	doc := &Document{
		Version:         Version,
		Name:            first.Name,
		CreatedAt:       time.Now().UTC(),
		WorldHash:       w.Hash(),
		MaxSteps:        maxSteps,
		Steps:           res.Len(),
		OutOfSteps:      res.OutOfSteps(),
		CompactionStart: res.CompactionStart(),
		Rooms:           w.Rooms,
		Snapshots:       make([]Snapshot, res.Len()),
	}
	for i, a := range res.Snapshots() {
		doc.Snapshots[i] = snapshotOf(a)
	}
	return doc
}

func snapshotOf(a *area.Area) Snapshot {
	s := Snapshot{Marked: a.Marked()}
	for _, id := range a.PlacedIDs() {
		p, _ := a.Locate(id)
		s.Rooms = append(s.Rooms, Position{ID: id, X: p.X, Y: p.Y})
	}
	if len(s.Marked) == 0 {
		s.Marked = nil
	}
	return s
}

// Summary returns the listing view of d.
func (d *Document) Summary() Summary {
	return Summary{
		ID:         d.ID,
		Name:       d.Name,
		CreatedAt:  d.CreatedAt,
		Steps:      len(d.Snapshots),
		OutOfSteps: d.OutOfSteps,
	}
}

// World returns the document's rooms as a world.
func (d *Document) World() *world.World {
	return &world.World{Name: d.Name, Rooms: slices.Clone(d.Rooms)}
}

// ToResult rebuilds the layout result. Every snapshot is a fresh area; any
// position conflict or unknown room makes the document invalid.
func (d *Document) ToResult() (*layout.Result, error) {
	if len(d.Snapshots) == 0 {
		return nil, ErrEmptyHistory
	}
	base, err := d.World().ToArea()
	if err != nil {
		return nil, fmt.Errorf("history rooms: %w", err)
	}
	snaps := make([]*area.Area, len(d.Snapshots))
	for i, s := range d.Snapshots {
		a := base.Clone()
		moves := make(map[int]area.Point, len(s.Rooms))
		for _, p := range s.Rooms {
			moves[p.ID] = area.Point{X: p.X, Y: p.Y}
		}
		if err := a.SetPositions(moves); err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		a.Mark(s.Marked...)
		snaps[i] = a
	}
	return layout.NewResult(snaps, d.CompactionStart, d.OutOfSteps), nil
}
