package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

// RenderPNG rasterizes the scene. Scale multiplies the output size.
func RenderPNG(s *Scene, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	w, h := int(s.Width*scale), int(s.Height*scale)
	dc := gg.NewContext(w, h)
	dc.Scale(scale, scale)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	// lines first so boxes sit on top
	dc.SetLineWidth(2)
	for _, l := range s.Lines {
		if len(l.Points) < 2 {
			continue
		}
		dc.SetHexColor(l.Color())
		if l.Kind.Dashed() {
			dc.SetDash(6, 4)
		} else {
			dc.SetDash()
		}
		dc.MoveTo(l.Points[0].X, l.Points[0].Y)
		for _, p := range l.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()
	}
	dc.SetDash()

	for _, b := range s.Boxes {
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 4)
		if b.Marked {
			dc.SetHexColor("#fff3b0")
			dc.FillPreserve()
			dc.SetHexColor("#e09f3e")
			dc.SetLineWidth(3)
		} else {
			dc.SetHexColor("#ffffff")
			dc.FillPreserve()
			dc.SetHexColor("#333333")
			dc.SetLineWidth(1.5)
		}
		dc.Stroke()

		c := b.Center()
		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(b.Label, c.X, c.Y, 0.5, 0.5)
		if b.Detail != "" {
			dc.SetHexColor("#666666")
			dc.DrawStringAnchored(b.Detail, c.X, b.Y+b.H+10, 0.5, 0.5)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
