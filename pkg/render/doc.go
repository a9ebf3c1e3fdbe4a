// Package render draws a laid-out area.
//
// Every renderer reads the same [Scene]: one box per placed room and one
// styled line per connection whose endpoints are both placed. The scene is
// built from the area's [area.ConnectionReport], so a line's look tells its
// classification:
//
//   - normal: solid black
//   - long: dashed blue
//   - non-straight: red L-shaped polyline
//   - obstructed: dashed red
//   - intersecting: orange, offset per lane so crossing lines stay apart
//
// Marked rooms are highlighted. [Options.DebugInfo] adds room ids and grid
// coordinates to the labels.
//
// Output formats:
//
//	svg, _ := render.Render(a, render.FormatSVG, render.Options{})
//	png, _ := render.Render(a, render.FormatPNG, render.Options{Scale: 2})
//	txt, _ := render.Render(a, render.FormatText, render.Options{})
//	dot, _ := render.Render(a, render.FormatDOT, render.Options{})
//
// [FormatGraph] lays the DOT source out with Graphviz (positions pinned to
// the grid) and returns SVG.
package render
