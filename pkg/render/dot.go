package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// ToDOT converts the scene to Graphviz DOT. Node positions are pinned to
// the grid (pos="x,y!") so neato keeps the computed layout; Graphviz y grows
// upward, so rows are negated.
func ToDOT(s *Scene) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", strconv.Quote(s.Name))
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, width=1.2, height=0.5];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, b := range s.Boxes {
		x := float64(b.Cell.X-s.Rect.X) * CellWidth / 72
		y := -float64(b.Cell.Y-s.Rect.Y) * CellHeight / 72
		label := b.Label
		if b.Detail != "" {
			label += "\n" + b.Detail
		}
		attrs := fmt.Sprintf("label=%q, pos=\"%.2f,%.2f!\"", label, x, y)
		if b.Marked {
			attrs += ", fillcolor=\"#fff3b0\", color=\"#e09f3e\", penwidth=2"
		}
		fmt.Fprintf(&buf, "  r%d [%s];\n", b.ID, attrs)
	}

	buf.WriteString("\n")
	for _, l := range s.Lines {
		attrs := fmt.Sprintf("color=%q, label=%q", l.Color(), dirLabel(l.Dir))
		if l.Kind.Dashed() {
			attrs += ", style=dashed"
		}
		if l.TwoWay {
			attrs += ", dir=both"
		}
		fmt.Fprintf(&buf, "  r%d -> r%d [%s];\n", l.Source, l.Target, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dirLabel(d area.Direction) string {
	return d.String()[:1]
}

// RenderGraphSVG lays the DOT source out with neato and returns SVG.
func RenderGraphSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one whose
// width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
