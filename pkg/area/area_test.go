package area

import (
	"errors"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

// build creates an area from "id dir target" exits and a position table.
func build(t *testing.T, exits [][3]int, pos map[int]Point, extra ...int) *Area {
	t.Helper()
	rooms := map[int]*Room{}
	get := func(id int) *Room {
		if r, ok := rooms[id]; ok {
			return r
		}
		r := NewRoom(id, "")
		rooms[id] = r
		return r
	}
	for _, e := range exits {
		get(e[0]).Connect(Direction(e[1]), e[2])
		get(e[2])
	}
	for _, id := range extra {
		get(id)
	}
	for id := range pos {
		get(id)
	}
	a := New("test")
	for _, r := range rooms {
		if err := a.AddRoom(r); err != nil {
			t.Fatalf("AddRoom(%d): %v", r.ID, err)
		}
	}
	for id, p := range pos {
		if err := a.SetPosition(id, p); err != nil {
			t.Fatalf("SetPosition(%d, %v): %v", id, p, err)
		}
	}
	return a
}

func keys(conns []*Connection) []ConnectionKey {
	out := make([]ConnectionKey, len(conns))
	for i, c := range conns {
		out[i] = c.Key()
	}
	return out
}

func TestAddRoomDuplicate(t *testing.T) {
	a := New("dup")
	if err := a.AddRoom(NewRoom(1, "a")); err != nil {
		t.Fatal(err)
	}
	if err := a.AddRoom(NewRoom(1, "b")); !errors.Is(err, ErrDuplicateRoom) {
		t.Errorf("AddRoom duplicate error = %v, want ErrDuplicateRoom", err)
	}
}

func TestValidateDangling(t *testing.T) {
	a := New("dangling")
	_ = a.AddRoom(NewRoom(1, "a").Connect(East, 99))
	if err := a.Validate(); !errors.Is(err, ErrDanglingConnection) {
		t.Errorf("Validate() = %v, want ErrDanglingConnection", err)
	}
}

func TestLocate(t *testing.T) {
	a := build(t, [][3]int{{1, int(East), 2}}, map[int]Point{1: {0, 0}})
	if _, pl := a.Locate(1); pl != Placed {
		t.Errorf("Locate(1) = %s, want placed", pl)
	}
	if _, pl := a.Locate(2); pl != Unplaced {
		t.Errorf("Locate(2) = %s, want unplaced", pl)
	}
	if _, pl := a.Locate(3); pl != NotFound {
		t.Errorf("Locate(3) = %s, want not found", pl)
	}
}

func TestLedgerMergesReverseExits(t *testing.T) {
	a := build(t, [][3]int{
		{1, int(East), 2},
		{2, int(West), 1},
		{2, int(North), 3},
		{3, int(Up), 3},
	}, nil)
	l := a.Ledger()
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	c, ok := l.Find(2, 1, West)
	if !ok || c.Source != 1 || !c.TwoWay {
		t.Errorf("Find(2, 1, west) = %v, %v, want two-way 1 -east-> 2", c, ok)
	}
	if c, ok := l.Find(3, 2, South); !ok || c.TwoWay {
		t.Errorf("Find(3, 2, south) = %v, %v, want one-way connection", c, ok)
	}
	if got := a.ConnectionCount(2); got != 2 {
		t.Errorf("ConnectionCount(2) = %d, want 2", got)
	}
}

func TestSetPositionRejectsOccupiedCell(t *testing.T) {
	a := build(t, nil, map[int]Point{1: {0, 0}}, 2)
	err := a.SetPosition(2, Point{0, 0})
	if !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("SetPosition error = %v, want ErrCellOccupied", err)
	}
	if _, pl := a.Locate(2); pl != Unplaced {
		t.Errorf("room 2 placed after rejected write")
	}
}

func TestSetPositionsAllowsSwap(t *testing.T) {
	a := build(t, nil, map[int]Point{1: {0, 0}, 2: {1, 0}})
	if err := a.SetPositions(map[int]Point{1: {1, 0}, 2: {0, 0}}); err != nil {
		t.Fatalf("SetPositions swap: %v", err)
	}
	if id, _ := a.RoomAt(0, 0); id != 2 {
		t.Errorf("RoomAt(0,0) = %d, want 2", id)
	}
	err := a.SetPositions(map[int]Point{1: {5, 5}, 2: {5, 5}})
	if !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("SetPositions collision error = %v", err)
	}
	if p, _ := a.Locate(1); p != (Point{1, 0}) {
		t.Errorf("room 1 at %v after rejected batch, want (1,0)", p)
	}
}

func TestReportSingleRoom(t *testing.T) {
	a := build(t, nil, map[int]Point{7: {3, 4}})
	r := a.Report()
	if r.Total() != 0 || len(r.Intersections) != 0 {
		t.Errorf("Report() = %+v, want empty", r)
	}
	if got := a.Rect(); got != (Rectangle{3, 4, 1, 1}) {
		t.Errorf("Rect() = %v", got)
	}
}

func TestReportNormal(t *testing.T) {
	a := build(t, [][3]int{{1, int(East), 2}}, map[int]Point{1: {0, 0}, 2: {1, 0}})
	r := a.Report()
	if len(r.Normal) != 1 || r.BrokenCount() != 0 {
		t.Errorf("Report() = %+v, want one normal connection", r)
	}
}

// drawArea generates up to eight rooms on distinct cells of a 5x5 grid, with
// random exits between them. Some rooms stay unplaced.
func drawArea(t *rapid.T) *Area {
	n := rapid.IntRange(1, 8).Draw(t, "rooms")
	cells := make([]int, 25)
	for i := range cells {
		cells[i] = i
	}
	cells = rapid.Permutation(cells).Draw(t, "cells")

	a := New("prop")
	for id := 1; id <= n; id++ {
		r := NewRoom(id, "")
		for range rapid.IntRange(0, 3).Draw(t, "exits") {
			d := rapid.SampledFrom(AllDirections).Draw(t, "dir")
			r.Connect(d, rapid.IntRange(1, n).Draw(t, "target"))
		}
		if err := a.AddRoom(r); err != nil {
			t.Fatalf("AddRoom(%d): %v", id, err)
		}
	}
	for id := 1; id <= n; id++ {
		if !rapid.Bool().Draw(t, "placed") {
			continue
		}
		c := cells[id-1]
		if err := a.SetPosition(id, Point{c % 5, c / 5}); err != nil {
			t.Fatalf("SetPosition(%d): %v", id, err)
		}
	}
	return a
}

func TestReportStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawArea(t)
		first := a.Report()
		second := a.Report()
		third := a.Clone().Report()
		for _, lists := range [][3][]*Connection{
			{first.Normal, second.Normal, third.Normal},
			{first.NonStraight, second.NonStraight, third.NonStraight},
			{first.Obstructed, second.Obstructed, third.Obstructed},
			{first.Long, second.Long, third.Long},
			{first.Intersections, second.Intersections, third.Intersections},
		} {
			if !slices.Equal(keys(lists[0]), keys(lists[1])) {
				t.Fatalf("report changed between calls: %v vs %v", keys(lists[0]), keys(lists[1]))
			}
			if !slices.Equal(keys(lists[0]), keys(lists[2])) {
				t.Fatalf("clone reports %v, want %v", keys(lists[2]), keys(lists[0]))
			}
		}

		placed := 0
		for _, c := range a.Ledger().All() {
			_, sp := a.Locate(c.Source)
			_, tp := a.Locate(c.Target)
			if sp == Placed && tp == Placed {
				placed++
			}
		}
		if first.Total() > placed {
			t.Fatalf("Total() = %d, only %d connections have both ends placed", first.Total(), placed)
		}
		for _, c := range first.Obstructed {
			for _, id := range c.Obstacles() {
				if c.Touches(id) {
					t.Fatalf("%v lists its own endpoint %d as obstacle", c, id)
				}
				if _, pl := a.Locate(id); pl != Placed {
					t.Fatalf("%v lists unplaced obstacle %d", c, id)
				}
			}
		}
	})
}

func TestReportObstructed(t *testing.T) {
	tests := []struct {
		name      string
		middle    [][3]int
		obstacles []int
	}{
		{
			name:      "room with crossing exit blocks",
			middle:    [][3]int{{3, int(North), 4}},
			obstacles: []int{3},
		},
		{
			name:      "single exit on same axis is exempt",
			middle:    [][3]int{{3, int(West), 1}},
			obstacles: nil,
		},
		{
			name:      "single exit on other axis blocks",
			middle:    [][3]int{{3, int(South), 5}},
			obstacles: []int{3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exits := append([][3]int{{1, int(East), 2}}, tt.middle...)
			a := build(t, exits, map[int]Point{1: {0, 0}, 3: {1, 0}, 2: {2, 0}})
			r := a.Report()
			c, _ := a.Ledger().Get(ConnectionKey{1, East})
			if tt.obstacles == nil {
				if len(r.Obstructed) != 0 {
					t.Errorf("Obstructed = %v, want none", r.Obstructed)
				}
				if !slices.Contains(r.Normal, c) {
					t.Errorf("1 -east-> 2 not normal: %+v", r)
				}
				return
			}
			if len(r.Obstructed) != 1 || r.Obstructed[0] != c {
				t.Fatalf("Obstructed = %v, want [1 east 2]", r.Obstructed)
			}
			if got := c.Obstacles(); !slices.Equal(got, tt.obstacles) {
				t.Errorf("Obstacles() = %v, want %v", got, tt.obstacles)
			}
		})
	}
}

func TestReportNonStraightAndLong(t *testing.T) {
	a := build(t, [][3]int{
		{1, int(East), 2},
		{1, int(Up), 3},
		{1, int(South), 4},
	}, map[int]Point{1: {0, 0}, 2: {-1, 0}, 3: {2, -2}, 4: {1, 1}})
	r := a.Report()
	if got := keys(r.NonStraight); !slices.Equal(got, []ConnectionKey{{1, East}, {1, South}}) {
		t.Errorf("NonStraight = %v", got)
	}
	if got := keys(r.Long); !slices.Equal(got, []ConnectionKey{{1, Up}}) {
		t.Errorf("Long = %v", got)
	}
	if r.BrokenCount() != 3 {
		t.Errorf("BrokenCount() = %d, want 3", r.BrokenCount())
	}
}

func TestReportSuppressesNonStraightWithCleanAlternative(t *testing.T) {
	a := build(t, [][3]int{
		{1, int(East), 2},
		{1, int(North), 2},
	}, map[int]Point{1: {0, 0}, 2: {1, 0}})
	r := a.Report()
	if len(r.NonStraight) != 0 {
		t.Errorf("NonStraight = %v, want suppressed", r.NonStraight)
	}
	if len(r.Normal) != 1 {
		t.Errorf("Normal = %v, want one", r.Normal)
	}
}

func TestReportIntersections(t *testing.T) {
	// 1 -east-> 2 runs through (1,1); 3 -south-> 4 runs through the same cell.
	a := build(t, [][3]int{
		{1, int(East), 2},
		{3, int(South), 4},
	}, map[int]Point{1: {0, 1}, 2: {2, 1}, 3: {1, 0}, 4: {1, 2}})
	r := a.Report()
	if got := keys(r.Intersections); !slices.Equal(got, []ConnectionKey{{1, East}, {3, South}}) {
		t.Errorf("Intersections = %v", got)
	}
	if got := a.PassThrough(1, 1); len(got) != 2 {
		t.Errorf("PassThrough(1,1) = %v, want 2 connections", got)
	}
	if len(r.Obstructed) != 0 {
		t.Errorf("Obstructed = %v, want none", r.Obstructed)
	}
}

func TestCacheInvalidatedOnWrite(t *testing.T) {
	a := build(t, [][3]int{{1, int(East), 2}}, map[int]Point{1: {0, 0}, 2: {1, 0}})
	if len(a.Report().Normal) != 1 {
		t.Fatal("expected normal connection")
	}
	if err := a.SetPosition(2, Point{0, 1}); err != nil {
		t.Fatal(err)
	}
	if len(a.Report().NonStraight) != 1 {
		t.Errorf("report not recomputed after SetPosition")
	}
	a.ClearPosition(2)
	if a.Report().Total() != 0 {
		t.Errorf("report not recomputed after ClearPosition")
	}
}

func TestExpand(t *testing.T) {
	before := map[int]Point{1: {0, 0}, 2: {1, 0}, 3: {2, 1}, 4: {-1, 2}, 5: {1, -1}}
	tests := []struct {
		name   string
		anchor Point
		v      Point
	}{
		{"east", Point{1, 0}, Point{1, 0}},
		{"west", Point{1, 0}, Point{-1, 0}},
		{"south", Point{0, 1}, Point{0, 1}},
		{"up", Point{1, 0}, Point{1, -1}},
		{"down", Point{0, 0}, Point{-1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := build(t, nil, before)
			a.Expand(tt.anchor, tt.v)
			after := a.Clone().Positions()
			seen := map[Point]int{}
			for id, p := range after {
				if o, dup := seen[p]; dup {
					t.Fatalf("rooms %d and %d share %v", o, id, p)
				}
				seen[p] = id
				want := before[id]
				if tt.v.X > 0 && want.X >= tt.anchor.X || tt.v.X < 0 && want.X <= tt.anchor.X {
					want.X += sign(tt.v.X)
				}
				if tt.v.Y > 0 && want.Y >= tt.anchor.Y || tt.v.Y < 0 && want.Y <= tt.anchor.Y {
					want.Y += sign(tt.v.Y)
				}
				if p != want {
					t.Errorf("room %d at %v, want %v", id, p, want)
				}
			}
			if _, ok := a.RoomAt(tt.anchor.X, tt.anchor.Y); ok {
				t.Errorf("anchor %v still occupied", tt.anchor)
			}
		})
	}
}

func TestExpandKeepsOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawArea(t)
		before := a.Positions()
		anchor := Point{rapid.IntRange(-1, 5).Draw(t, "ax"), rapid.IntRange(-1, 5).Draw(t, "ay")}
		v := Point{rapid.IntRange(-1, 1).Draw(t, "vx"), rapid.IntRange(-1, 1).Draw(t, "vy")}
		a.Expand(anchor, v)
		after := a.Positions()

		if len(after) != len(before) {
			t.Fatalf("placed count %d, want %d", len(after), len(before))
		}
		seen := map[Point]int{}
		for id, p := range after {
			if o, dup := seen[p]; dup {
				t.Fatalf("rooms %d and %d share %v", o, id, p)
			}
			seen[p] = id
			d := p.Sub(before[id])
			if abs(d.X) > 1 || abs(d.Y) > 1 {
				t.Fatalf("room %d moved by %v", id, d)
			}
		}
		if v != (Point{}) {
			if _, ok := a.RoomAt(anchor.X, anchor.Y); ok {
				t.Fatalf("anchor %v still occupied", anchor)
			}
		}
		for i, p := range before {
			for j, q := range before {
				if p.X < q.X && after[i].X >= after[j].X || p.Y < q.Y && after[i].Y >= after[j].Y {
					t.Fatalf("rooms %d and %d swapped order: %v,%v -> %v,%v", i, j, p, q, after[i], after[j])
				}
			}
		}
	})
}

func TestDeleteEmptyRowsAndColumns(t *testing.T) {
	a := build(t, nil, map[int]Point{1: {0, 0}, 2: {3, 0}, 3: {3, 4}})
	if !a.DeleteEmptyRowsAndColumns() {
		t.Fatal("DeleteEmptyRowsAndColumns() = false")
	}
	want := map[int]Point{1: {0, 0}, 2: {1, 0}, 3: {1, 1}}
	for id, p := range want {
		if got, _ := a.Locate(id); got != p {
			t.Errorf("room %d at %v, want %v", id, got, p)
		}
	}
	if a.DeleteEmptyRowsAndColumns() {
		t.Error("second call reported changes")
	}
}

func TestFixSingleExitRoomPlacement(t *testing.T) {
	a := build(t, [][3]int{
		{1, int(East), 2},
		{1, int(South), 3},
		{4, int(West), 1},
	}, map[int]Point{1: {0, 0}, 2: {3, 0}, 3: {0, 4}, 4: {1, 0}})
	// 2 cannot move: (1,0) belongs to 4. 3 snaps to (0,1).
	if n := a.FixSingleExitRoomPlacement(); n != 1 {
		t.Fatalf("FixSingleExitRoomPlacement() = %d, want 1", n)
	}
	if p, _ := a.Locate(3); p != (Point{0, 1}) {
		t.Errorf("room 3 at %v, want (0,1)", p)
	}
	if p, _ := a.Locate(2); p != (Point{3, 0}) {
		t.Errorf("room 2 moved to %v", p)
	}
}

func TestGroupConnectedPositionedRooms(t *testing.T) {
	a := build(t, [][3]int{
		{1, int(East), 2},
		{2, int(East), 3},
		{4, int(East), 5},
		{6, int(East), 7},
	}, map[int]Point{1: {0, 0}, 2: {1, 0}, 3: {2, 0}, 4: {0, 2}, 5: {1, 2}, 6: {0, 4}})
	got := a.GroupConnectedPositionedRooms()
	want := [][]int{{6}, {4, 5}, {1, 2, 3}}
	if len(got) != len(want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("group %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEqualIgnoresEmptyLanes(t *testing.T) {
	a := build(t, nil, map[int]Point{1: {0, 0}, 2: {1, 0}})
	b := build(t, nil, map[int]Point{1: {5, 5}, 2: {9, 5}})
	if !Equal(a, b) {
		t.Error("Equal() = false for layouts differing only in gaps")
	}
	c := build(t, nil, map[int]Point{1: {0, 0}, 2: {0, 1}})
	if Equal(a, c) {
		t.Error("Equal() = true for different layouts")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := build(t, [][3]int{{1, int(East), 2}}, map[int]Point{1: {0, 0}, 2: {1, 0}})
	a.Mark(1)
	b := a.Clone()
	if err := b.SetPosition(2, Point{0, 1}); err != nil {
		t.Fatal(err)
	}
	b.ClearMarks()
	if p, _ := a.Locate(2); p != (Point{1, 0}) {
		t.Errorf("original moved to %v", p)
	}
	if !a.IsMarked(1) {
		t.Error("original lost its mark")
	}
	if len(a.Report().Normal) != 1 || len(b.Report().NonStraight) != 1 {
		t.Error("clone shares classification with original")
	}
}
