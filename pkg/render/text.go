package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// Character cell metrics of the text grid. A room label takes textLabel
// columns followed by one gap column; rows alternate rooms and links.
const (
	textCellW = 6
	textCellH = 2
	textLabel = textCellW - 1
)

// RenderText draws the area as a character grid. Straight connections are
// drawn with '-', '|' and '/'; the rest are listed below the grid. Marked
// rooms are prefixed with '*'.
func RenderText(a *area.Area, opts Options) []byte {
	rect := a.Rect()
	var sb strings.Builder
	if a.Name != "" {
		fmt.Fprintf(&sb, "%s\n", a.Name)
	}
	if rect.Empty() {
		sb.WriteString("(empty)\n")
		return []byte(sb.String())
	}

	g := newTextGrid(rect)
	report := a.Report()
	straight := make(map[*area.Connection]bool)
	for _, c := range report.Normal {
		straight[c] = true
	}
	for _, c := range report.Long {
		straight[c] = true
	}
	for _, c := range report.Obstructed {
		straight[c] = true
	}
	for _, c := range a.Ledger().All() {
		if !straight[c] {
			continue
		}
		src, _ := a.Locate(c.Source)
		dst, _ := a.Locate(c.Target)
		g.link(src, dst, c.Dir)
	}
	for _, id := range a.PlacedIDs() {
		p, _ := a.Locate(id)
		label := strconv.Itoa(id)
		if a.IsMarked(id) {
			label = "*" + label
		}
		g.label(p, label)
	}
	sb.WriteString(g.String())

	if len(report.NonStraight) > 0 {
		sb.WriteString("\nnon-straight:\n")
		for _, c := range report.NonStraight {
			fmt.Fprintf(&sb, "  %s\n", c)
		}
	}
	fmt.Fprintf(&sb, "\nnormal %d, non-straight %d, obstructed %d, long %d, intersections %d\n",
		len(report.Normal), len(report.NonStraight), len(report.Obstructed), len(report.Long), len(report.Intersections))

	if opts.DebugInfo {
		sb.WriteString("\n")
		for _, id := range a.PlacedIDs() {
			p, _ := a.Locate(id)
			r, _ := a.Room(id)
			fmt.Fprintf(&sb, "%6d %-10s %s\n", id, p, r.Name)
		}
	}
	return []byte(sb.String())
}

type textGrid struct {
	rect  area.Rectangle
	cells [][]rune
}

func newTextGrid(rect area.Rectangle) *textGrid {
	rows := rect.Height*textCellH - 1
	cols := rect.Width*textCellW - 1
	g := &textGrid{rect: rect, cells: make([][]rune, rows)}
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

// anchor returns the row and column of the first label character of p.
func (g *textGrid) anchor(p area.Point) (int, int) {
	return (p.Y - g.rect.Y) * textCellH, (p.X - g.rect.X) * textCellW
}

func (g *textGrid) set(row, col int, r rune) {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.cells[row]) {
		return
	}
	if g.cells[row][col] == ' ' {
		g.cells[row][col] = r
	}
}

func (g *textGrid) label(p area.Point, s string) {
	row, col := g.anchor(p)
	rs := []rune(s)
	if len(rs) > textLabel {
		rs = rs[:textLabel]
	}
	for i := 0; i < textLabel; i++ {
		g.cells[row][col+i] = ' '
	}
	for i, r := range rs {
		g.cells[row][col+i] = r
	}
}

func (g *textGrid) link(src, dst area.Point, d area.Direction) {
	k, ok := area.StepsAlong(dst.Sub(src), d)
	if !ok {
		return
	}
	step := d.Delta()
	for i := 0; i < k; i++ {
		from := src.Add(step.Mul(i))
		to := from.Add(step)
		g.segment(from, to, d)
		if i > 0 {
			g.through(from, d)
		}
	}
}

// segment draws the glyph between two adjacent cells.
func (g *textGrid) segment(from, to area.Point, d area.Direction) {
	// normalize so the step goes east, south or up-right
	if d == area.West || d == area.North || d == area.Down {
		from, to = to, from
	}
	row, col := g.anchor(from)
	switch d.Axis() {
	case area.AxisHorizontal:
		g.set(row, col+textLabel, '-')
	case area.AxisVertical:
		g.set(row+1, col+textLabel/2, '|')
	case area.AxisDiagonal:
		g.set(row-1, col+textLabel, '/')
	}
}

// through draws the line across an intermediate cell.
func (g *textGrid) through(p area.Point, d area.Direction) {
	row, col := g.anchor(p)
	switch d.Axis() {
	case area.AxisHorizontal:
		for i := 0; i < textLabel; i++ {
			g.set(row, col+i, '-')
		}
	case area.AxisVertical:
		g.set(row, col+textLabel/2, '|')
	case area.AxisDiagonal:
		g.set(row, col+textLabel/2, '/')
	}
}

func (g *textGrid) String() string {
	var sb strings.Builder
	for _, row := range g.cells {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
