package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// Grid metrics in pixels.
const (
	CellWidth  = 128.0
	CellHeight = 80.0
	BoxWidth   = 96.0
	BoxHeight  = 40.0
	Margin     = 24.0
	laneGap    = 6.0
)

// LineKind is how a connection is drawn.
type LineKind int

const (
	LineNormal LineKind = iota
	LineLong
	LineNonStraight
	LineObstructed
)

// String returns the CSS class name of the kind.
func (k LineKind) String() string {
	switch k {
	case LineLong:
		return "long"
	case LineNonStraight:
		return "nonstraight"
	case LineObstructed:
		return "obstructed"
	}
	return "normal"
}

// Color returns the stroke color of the kind.
func (k LineKind) Color() string {
	switch k {
	case LineLong:
		return "#1f5fbf"
	case LineNonStraight, LineObstructed:
		return "#d62828"
	}
	return "#000000"
}

// Dashed reports whether the kind is drawn dashed.
func (k LineKind) Dashed() bool { return k == LineLong || k == LineObstructed }

const intersectionColor = "#f77f00"

// Vec is a point in pixel space.
type Vec struct{ X, Y float64 }

// Box is one placed room.
type Box struct {
	ID     int
	Label  string
	Detail string // grid coordinates in debug mode
	Cell   area.Point
	X, Y   float64 // top-left
	W, H   float64
	Marked bool
}

// Center returns the box center.
func (b Box) Center() Vec { return Vec{b.X + b.W/2, b.Y + b.H/2} }

// Line is one drawn connection.
type Line struct {
	Source, Target int
	Dir            area.Direction
	TwoWay         bool
	Kind           LineKind
	Intersecting   bool
	Points         []Vec
}

// Color returns the stroke color, orange for intersecting lines.
func (l Line) Color() string {
	if l.Intersecting {
		return intersectionColor
	}
	return l.Kind.Color()
}

// Scene is the drawable form of an area.
type Scene struct {
	Name          string
	Width, Height float64
	Rect          area.Rectangle
	Boxes         []Box
	Lines         []Line
	Report        area.ConnectionReport
}

// Options configures rendering.
type Options struct {
	// DebugInfo adds room ids and grid coordinates to labels.
	DebugInfo bool
	// Scale multiplies PNG dimensions. Zero means 1.
	Scale float64
}

// NewScene lays out the boxes and lines of a.
func NewScene(a *area.Area, opts Options) *Scene {
	rect := a.Rect()
	s := &Scene{
		Name:   a.Name,
		Rect:   rect,
		Width:  float64(max(rect.Width, 1))*CellWidth + 2*Margin,
		Height: float64(max(rect.Height, 1))*CellHeight + 2*Margin,
		Report: a.Report(),
	}

	for _, id := range a.PlacedIDs() {
		p, _ := a.Locate(id)
		r, _ := a.Room(id)
		x, y := cellOrigin(rect, p)
		b := Box{
			ID:     id,
			Label:  truncate(r.Name, 14),
			Cell:   p,
			X:      x + (CellWidth-BoxWidth)/2,
			Y:      y + (CellHeight-BoxHeight)/2,
			W:      BoxWidth,
			H:      BoxHeight,
			Marked: a.IsMarked(id),
		}
		if b.Label == "" || opts.DebugInfo {
			b.Label = truncate(withID(r.Name, id), 14)
		}
		if opts.DebugInfo {
			b.Detail = p.String()
		}
		s.Boxes = append(s.Boxes, b)
	}

	kinds := make(map[*area.Connection]LineKind)
	for _, c := range s.Report.NonStraight {
		kinds[c] = LineNonStraight
	}
	for _, c := range s.Report.Obstructed {
		kinds[c] = LineObstructed
	}
	for _, c := range s.Report.Long {
		kinds[c] = LineLong
	}
	crossing := make(map[*area.Connection]bool)
	for _, c := range s.Report.Intersections {
		crossing[c] = true
	}

	for _, c := range a.Ledger().All() {
		if c.Source == c.Target {
			continue
		}
		src, ok1 := a.Locate(c.Source)
		dst, ok2 := a.Locate(c.Target)
		if ok1 != area.Placed || ok2 != area.Placed {
			continue
		}
		l := Line{
			Source:       c.Source,
			Target:       c.Target,
			Dir:          c.Dir,
			TwoWay:       c.TwoWay,
			Kind:         kinds[c],
			Intersecting: crossing[c],
		}
		l.Points = linePoints(rect, src, dst, c.Dir, l.Kind)
		if l.Intersecting {
			offsetLine(l.Points, c.Dir, laneIndex(a, c, src, dst))
		}
		s.Lines = append(s.Lines, l)
	}
	return s
}

func cellOrigin(rect area.Rectangle, p area.Point) (float64, float64) {
	return Margin + float64(p.X-rect.X)*CellWidth, Margin + float64(p.Y-rect.Y)*CellHeight
}

func cellCenter(rect area.Rectangle, p area.Point) Vec {
	x, y := cellOrigin(rect, p)
	return Vec{x + CellWidth/2, y + CellHeight/2}
}

// linePoints routes a connection. Non-straight connections leave the source
// along their exit direction, then turn toward the target.
func linePoints(rect area.Rectangle, src, dst area.Point, d area.Direction, kind LineKind) []Vec {
	from, to := cellCenter(rect, src), cellCenter(rect, dst)
	if kind != LineNonStraight {
		return []Vec{from, to}
	}
	delta := d.Delta()
	exit := Vec{
		from.X + float64(delta.X)*CellWidth/2,
		from.Y + float64(delta.Y)*CellHeight/2,
	}
	if d.IsVertical() {
		return []Vec{from, exit, {to.X, exit.Y}, to}
	}
	return []Vec{from, exit, {exit.X, to.Y}, to}
}

// laneIndex is the highest slot c takes in any cell it passes through.
func laneIndex(a *area.Area, c *area.Connection, src, dst area.Point) int {
	k, ok := area.StepsAlong(dst.Sub(src), c.Dir)
	if !ok {
		return 0
	}
	idx := 0
	step := c.Dir.Delta()
	for i := 1; i < k; i++ {
		p := src.Add(step.Mul(i))
		for j, other := range a.PassThrough(p.X, p.Y) {
			if other == c {
				idx = max(idx, j)
			}
		}
	}
	return idx
}

// offsetLine shifts pts perpendicular to d. Lanes alternate sides: 0, +1,
// -1, +2, ...
func offsetLine(pts []Vec, d area.Direction, lane int) {
	shift := float64((lane+1)/2) * laneGap
	if lane%2 == 1 {
		shift = -shift
	}
	shift += laneGap / 2
	delta := d.Delta()
	nx, ny := float64(-delta.Y), float64(delta.X)
	n := math.Hypot(nx, ny)
	for i := range pts {
		pts[i].X += nx / n * shift
		pts[i].Y += ny / n * shift
	}
}

func withID(name string, id int) string {
	if name == "" {
		return "#" + strconv.Itoa(id)
	}
	return fmt.Sprintf("#%d %s", id, name)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
