package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"
)

// Format is an output format.
type Format string

const (
	FormatSVG   Format = "svg"
	FormatPNG   Format = "png"
	FormatText  Format = "txt"
	FormatDOT   Format = "dot"
	FormatGraph Format = "graph"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatText, FormatDOT, FormatGraph}

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat parses a single format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "text":
		return FormatText, nil
	case FormatSVG, FormatPNG, FormatText, FormatDOT, FormatGraph:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ParseFormats parses a comma-separated format list, dropping duplicates.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrUnknownFormat)
	}
	return out, nil
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	if f == FormatGraph {
		return ".graph.svg"
	}
	return "." + string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatGraph:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Render draws a in format f.
func Render(ctx context.Context, a *area.Area, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatText:
		return RenderText(a, opts), nil
	case FormatSVG:
		return RenderSVG(NewScene(a, opts)), nil
	case FormatPNG:
		return RenderPNG(NewScene(a, opts), opts.Scale)
	case FormatDOT:
		return []byte(ToDOT(NewScene(a, opts))), nil
	case FormatGraph:
		return RenderGraphSVG(ctx, ToDOT(NewScene(a, opts)))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
