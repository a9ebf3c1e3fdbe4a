package render

import (
	"bytes"
	"fmt"
	"strings"
)

const mapCSS = `
    .room { fill: #ffffff; stroke: #333333; stroke-width: 1.5; }
    .room.marked { fill: #fff3b0; stroke: #e09f3e; stroke-width: 3; }
    .label { font: 12px sans-serif; text-anchor: middle; dominant-baseline: middle; }
    .detail { font: 9px monospace; fill: #666666; text-anchor: middle; }
    .conn { fill: none; stroke-width: 2; }`

// RenderSVG draws the scene as a standalone SVG document.
func RenderSVG(s *Scene) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	if s.Name != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(s.Name))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", mapCSS)

	for _, l := range s.Lines {
		renderLine(&buf, l)
	}
	for _, b := range s.Boxes {
		renderBox(&buf, b)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLine(buf *bytes.Buffer, l Line) {
	pts := make([]string, len(l.Points))
	for i, p := range l.Points {
		pts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	dash := ""
	if l.Kind.Dashed() {
		dash = ` stroke-dasharray="6,4"`
	}
	fmt.Fprintf(buf, `  <polyline class="conn %s" data-source="%d" data-target="%d" points="%s" stroke="%s"%s/>`+"\n",
		l.Kind, l.Source, l.Target, strings.Join(pts, " "), l.Color(), dash)
}

func renderBox(buf *bytes.Buffer, b Box) {
	class := "room"
	if b.Marked {
		class += " marked"
	}
	fmt.Fprintf(buf, `  <rect id="room-%d" class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4"/>`+"\n",
		b.ID, class, b.X, b.Y, b.W, b.H)
	c := b.Center()
	fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f">%s</text>`+"\n", c.X, c.Y, escapeXML(b.Label))
	if b.Detail != "" {
		fmt.Fprintf(buf, `  <text class="detail" x="%.1f" y="%.1f">%s</text>`+"\n", c.X, b.Y+b.H+10, escapeXML(b.Detail))
	}
}
