package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a world file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads a world in the given format. Unknown fields are rejected.
func Decode(r io.Reader, format Format) (*World, error) {
	var w World
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("decode json world: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&w); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml world: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported world format %q", format)
	}
	return &w, nil
}

// Parse decodes data, sniffing JSON by its leading brace.
func Parse(data []byte) (*World, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return Decode(bytes.NewReader(data), FormatJSON)
	}
	return Decode(bytes.NewReader(data), FormatYAML)
}

// Load reads a world file, choosing the format from its extension. A world
// without a name takes the file's base name.
func Load(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if w.Name == "" {
		w.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return w, nil
}

// Encode writes w in the given format.
func Encode(out io.Writer, w *World, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(w)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(w); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported world format %q", format)
}

// Save writes w to path in the format implied by its extension.
func Save(path string, w *World) error {
	var buf bytes.Buffer
	if err := Encode(&buf, w, FormatFromPath(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
