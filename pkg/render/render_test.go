package render

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// sample: 1 <-> 2 east/west, 2 -> 3 south.
func sample(t *testing.T, third area.Point) *area.Area {
	t.Helper()
	a := area.New("Midgaard")
	require.NoError(t, a.AddRoom(area.NewRoom(1, "").Connect(area.East, 2)))
	require.NoError(t, a.AddRoom(area.NewRoom(2, "Temple").Connect(area.West, 1).Connect(area.South, 3)))
	require.NoError(t, a.AddRoom(area.NewRoom(3, "Square & Market")))
	require.NoError(t, a.SetPositions(map[int]area.Point{
		1: {X: 0, Y: 0},
		2: {X: 1, Y: 0},
		3: third,
	}))
	return a
}

func TestRenderText(t *testing.T) {
	a := sample(t, area.Point{X: 1, Y: 1})
	got := string(RenderText(a, Options{}))
	want := "Midgaard\n" +
		"1    -2\n" +
		"        |\n" +
		"      3\n" +
		"\nnormal 2, non-straight 0, obstructed 0, long 0, intersections 0\n"
	if got != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTextNonStraightAndMarks(t *testing.T) {
	a := sample(t, area.Point{X: 0, Y: 1})
	a.Mark(1)
	got := string(RenderText(a, Options{DebugInfo: true}))
	assert.Contains(t, got, "*1")
	assert.Contains(t, got, "non-straight:\n")
	assert.Contains(t, got, "non-straight 1")
	assert.Contains(t, got, "Temple")
}

func TestRenderTextEmpty(t *testing.T) {
	a := area.New("")
	require.NoError(t, a.AddRoom(area.NewRoom(1, "x")))
	assert.Equal(t, "(empty)\n", string(RenderText(a, Options{})))
}

func TestNewScene(t *testing.T) {
	a := sample(t, area.Point{X: 0, Y: 1})
	s := NewScene(a, Options{})

	require.Len(t, s.Boxes, 3)
	assert.Equal(t, "#1", s.Boxes[0].Label)
	assert.Equal(t, "Temple", s.Boxes[1].Label)
	assert.Equal(t, "Square & Mar..", s.Boxes[2].Label)
	assert.Equal(t, 2*CellWidth+2*Margin, s.Width)

	require.Len(t, s.Lines, 2)
	kinds := []LineKind{s.Lines[0].Kind, s.Lines[1].Kind}
	assert.ElementsMatch(t, []LineKind{LineNormal, LineNonStraight}, kinds)
	for _, l := range s.Lines {
		if l.Kind == LineNonStraight {
			assert.Len(t, l.Points, 4, "non-straight lines are L-shaped")
			assert.Equal(t, "#d62828", l.Color())
		} else {
			assert.True(t, l.TwoWay)
			assert.Len(t, l.Points, 2)
		}
	}
}

func TestSceneDebugInfo(t *testing.T) {
	a := sample(t, area.Point{X: 1, Y: 1})
	s := NewScene(a, Options{DebugInfo: true})
	assert.Equal(t, "#2 Temple", s.Boxes[1].Label)
	assert.Equal(t, "(1,0)", s.Boxes[1].Detail)
}

func TestOffsetLine(t *testing.T) {
	tests := []struct {
		lane int
		want float64
	}{
		{0, 3},
		{1, -3},
		{2, 9},
		{3, -9},
	}
	for _, tt := range tests {
		pts := []Vec{{0, 0}, {10, 0}}
		offsetLine(pts, area.East, tt.lane)
		if pts[0].Y != tt.want || pts[1].Y != tt.want || pts[1].X != 10 {
			t.Errorf("offsetLine(lane %d) = %v, want y=%v", tt.lane, pts, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	a := sample(t, area.Point{X: 0, Y: 1})
	a.Mark(2)
	svg := string(RenderSVG(NewScene(a, Options{})))

	assert.True(t, strings.HasPrefix(svg, "<svg xmlns="))
	assert.Contains(t, svg, "<title>Midgaard</title>")
	assert.Contains(t, svg, `id="room-1" class="room"`)
	assert.Contains(t, svg, `id="room-2" class="room marked"`)
	assert.Contains(t, svg, "Square &amp; Mar..")
	assert.Contains(t, svg, `class="conn normal"`)
	assert.Contains(t, svg, `class="conn nonstraight"`)
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestRenderPNG(t *testing.T) {
	a := sample(t, area.Point{X: 1, Y: 1})
	png, err := RenderPNG(NewScene(a, Options{}), 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
}

func TestToDOT(t *testing.T) {
	a := sample(t, area.Point{X: 1, Y: 1})
	dot := ToDOT(NewScene(a, Options{}))

	assert.Contains(t, dot, `digraph "Midgaard" {`)
	assert.Contains(t, dot, `r1 [label="#1", pos="0.00,0.00!"]`)
	assert.Contains(t, dot, `r3 [label="Square & Mar..", pos="1.78,-1.11!"]`)
	assert.Contains(t, dot, "r1 -> r2")
	assert.Contains(t, dot, "dir=both")
	assert.Contains(t, dot, "r2 -> r3")
}

func TestRenderGraph(t *testing.T) {
	a := sample(t, area.Point{X: 1, Y: 1})
	svg, err := Render(context.Background(), a, FormatGraph, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	assert.Contains(t, got, `width="100" height="50"`)

	plain := []byte("<svg><g/></svg>")
	assert.Equal(t, plain, normalizeViewBox(plain))
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("svg, PNG,svg,text")
	require.NoError(t, err)
	if !slices.Equal(got, []Format{FormatSVG, FormatPNG, FormatText}) {
		t.Errorf("ParseFormats() = %v", got)
	}

	if _, err := ParseFormats("svg,bmp"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormats(bmp) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := ParseFormats(" , "); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormats(empty) error = %v, want ErrUnknownFormat", err)
	}
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		f          Format
		ext, ctype string
	}{
		{FormatSVG, ".svg", "image/svg+xml"},
		{FormatPNG, ".png", "image/png"},
		{FormatText, ".txt", "text/plain; charset=utf-8"},
		{FormatGraph, ".graph.svg", "image/svg+xml"},
	}
	for _, tt := range tests {
		if got := tt.f.Ext(); got != tt.ext {
			t.Errorf("%s.Ext() = %q, want %q", tt.f, got, tt.ext)
		}
		if got := tt.f.ContentType(); got != tt.ctype {
			t.Errorf("%s.ContentType() = %q, want %q", tt.f, got, tt.ctype)
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	a := sample(t, area.Point{X: 1, Y: 1})
	if _, err := Render(context.Background(), a, Format("bmp"), Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render(bmp) error = %v", err)
	}
}
