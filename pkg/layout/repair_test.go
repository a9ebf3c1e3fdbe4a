package layout

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// placedArea builds an area from exits and puts every listed room on its cell.
func placedArea(t *testing.T, exits []exit, pos map[int]area.Point, extra ...int) *area.Area {
	t.Helper()
	a := newArea(t, exits, extra...)
	for id, p := range pos {
		require.NoError(t, a.SetPosition(id, p))
	}
	return a
}

// workingOn returns a builder whose working grid is a.
func workingOn(a *area.Area) *Builder {
	b := NewBuilder(a, DefaultOptions())
	b.work = a
	return b
}

func assertPlaced(t *testing.T, a *area.Area, want bool, ids ...int) {
	t.Helper()
	for _, id := range ids {
		_, pl := a.Locate(id)
		assert.Equal(t, want, pl == area.Placed, "room %d placed", id)
	}
}

func TestBuildRemoveListStaysInsideSeedPart(t *testing.T) {
	// A twelve room line with 50 and 51 hanging south of its first room, and
	// a separate three room part further down.
	var exits []exit
	pos := map[int]area.Point{}
	for i := 1; i <= 12; i++ {
		pos[i] = area.Point{X: i - 1}
		if i < 12 {
			exits = append(exits, exit{i, area.East, i + 1})
		}
	}
	exits = append(exits,
		exit{1, area.South, 50},
		exit{50, area.South, 51},
		exit{100, area.East, 101},
		exit{101, area.East, 102},
	)
	pos[50] = area.Point{Y: 1}
	pos[51] = area.Point{Y: 2}
	pos[100] = area.Point{Y: 4}
	pos[101] = area.Point{X: 1, Y: 4}
	pos[102] = area.Point{X: 2, Y: 4}

	tests := []struct {
		name  string
		seeds []int
		want  []int
	}{
		{"dead end", []int{51}, []int{51}},
		{"cut fragment", []int{50}, []int{50, 51}},
		{"split part keeps lowest remainder out", []int{101}, []int{100, 101}},
		{"two seeds", []int{51, 101}, []int{100, 101, 51}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := placedArea(t, exits, pos)
			got := BuildRemoveList(a, tt.seeds)
			want := slices.Clone(tt.want)
			slices.Sort(want)
			assert.Equal(t, want, got)
			assert.Equal(t, len(pos), a.PlacedCount())
		})
	}
}

func TestRemoveObstaclesKeepsSeparateParts(t *testing.T) {
	// 21 sits on the line 20 -> 22 and leads on to 30. The line 1 -> 2 -> 3
	// shares no connection with any of them.
	a := placedArea(t, []exit{
		{1, area.East, 2},
		{2, area.East, 3},
		{20, area.East, 22},
		{21, area.North, 30},
	}, map[int]area.Point{
		1: {Y: 5}, 2: {X: 1, Y: 5}, 3: {X: 2, Y: 5},
		20: {}, 21: {X: 1}, 22: {X: 2},
		30: {X: 1, Y: -1},
	})
	require.Len(t, a.Report().Obstructed, 1)

	b := workingOn(a)
	changed, err := b.removeObstacles()
	require.NoError(t, err)
	assert.True(t, changed)

	assertPlaced(t, a, false, 21)
	assertPlaced(t, a, true, 1, 2, 3, 20, 22, 30)
	assert.Empty(t, a.Report().Obstructed)
	require.Equal(t, 2, b.Steps())
	assert.Equal(t, []int{21}, b.history[0].Marked())
	assert.Empty(t, b.history[1].Marked())
}

func TestCandidateBetter(t *testing.T) {
	tests := []struct {
		name string
		c, o candidate
		want bool
	}{
		{"fewer obstructed", candidate{obstructed: 0, nonStraight: 3, removed: 5}, candidate{obstructed: 1}, true},
		{"more obstructed", candidate{obstructed: 2}, candidate{obstructed: 1, nonStraight: 4, removed: 4}, false},
		{"fewer non-straight", candidate{nonStraight: 1, removed: 9}, candidate{nonStraight: 2}, true},
		{"more non-straight", candidate{nonStraight: 2}, candidate{nonStraight: 1, removed: 9}, false},
		{"fewer removed", candidate{removed: 0}, candidate{removed: 1}, true},
		{"more removed", candidate{removed: 2}, candidate{removed: 1}, false},
		{"tie", candidate{obstructed: 1, nonStraight: 1, removed: 1}, candidate{obstructed: 1, nonStraight: 1, removed: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.better(tt.o))
		})
	}
}

func TestStraighten(t *testing.T) {
	// 1 -east-> 2 with 2 one row too low. Moving 2 up and moving 1 down both
	// fix it.
	tests := []struct {
		name  string
		extra map[int]area.Point
		want  map[int]area.Point
		marks []int
	}{
		{
			name:  "tie moves target",
			want:  map[int]area.Point{1: {}, 2: {X: 1}},
			marks: []int{2},
		},
		{
			name:  "occupied target cell moves source",
			extra: map[int]area.Point{3: {X: 1}},
			want:  map[int]area.Point{1: {Y: 1}, 2: {X: 1, Y: 1}, 3: {X: 1}},
			marks: []int{1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := map[int]area.Point{1: {}, 2: {X: 1, Y: 1}}
			var extra []int
			for id, p := range tt.extra {
				pos[id] = p
				extra = append(extra, id)
			}
			a := placedArea(t, []exit{{1, area.East, 2}}, pos, extra...)
			require.Len(t, a.Report().NonStraight, 1)

			b := workingOn(a)
			changed, err := b.straighten()
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.want, a.Positions())
			assert.Empty(t, a.Report().NonStraight)
			require.Equal(t, 2, b.Steps())
			assert.Equal(t, tt.marks, b.history[0].Marked())
		})
	}
}

func TestStraightenLeavesStraightLayout(t *testing.T) {
	a := placedArea(t, []exit{{1, area.East, 2}}, map[int]area.Point{1: {}, 2: {X: 3}})
	b := workingOn(a)
	changed, err := b.straighten()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, b.Steps())
}

func TestRemoveIntersectionsSparesJustPlaced(t *testing.T) {
	// 1 -east-> 2 and 3 -south-> 4 cross at (1,1).
	exits := []exit{{1, area.East, 2}, {3, area.South, 4}}
	pos := map[int]area.Point{1: {Y: 1}, 2: {X: 2, Y: 1}, 3: {X: 1}, 4: {X: 1, Y: 2}}

	tests := []struct {
		name       string
		justPlaced int
		gone       int
	}{
		{"source goes first", 0, 1},
		{"just placed source stays", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := placedArea(t, exits, pos)
			require.Len(t, a.Report().Intersections, 2)

			b := workingOn(a)
			changed, err := b.removeIntersections(tt.justPlaced)
			require.NoError(t, err)
			assert.True(t, changed)

			assertPlaced(t, a, false, tt.gone)
			assert.Equal(t, 3, a.PlacedCount())
			assert.Empty(t, a.Report().Intersections)
			require.Equal(t, 2, b.Steps())
			assert.Equal(t, []int{tt.gone}, b.history[0].Marked())
		})
	}
}

func TestBuildRepairsLeaveSeparatePartAlone(t *testing.T) {
	// The line 1 -> 2 -> 3 is laid out first. The knot placed below it needs
	// repairs, none of which may take the line with it.
	exits := []exit{{1, area.East, 2}, {2, area.East, 3}}
	for _, e := range cyclic() {
		exits = append(exits, exit{e.from + 40, e.dir, e.to + 40})
	}
	res, err := NewBuilder(newArea(t, exits), DefaultOptions()).Build(context.Background())
	require.NoError(t, err)

	repaired := false
	for i, s := range res.Snapshots() {
		assertNoSharedCells(t, s)
		m := s.Marked()
		if len(m) > 0 {
			repaired = true
		}
		assert.False(t, slices.Contains(m, 1) && slices.Contains(m, 2) && slices.Contains(m, 3),
			"snapshot %d marks the whole line: %v", i, m)
	}
	assert.True(t, repaired, "the knot should need at least one repair")
	assertPlaced(t, res.Last(), true, 1, 2, 3)
}
