// Package pkg provides the libraries behind mmb, the MUD map builder.
//
// # Overview
//
// mmb places the rooms of a MUD area on a two-dimensional grid so that exits
// run as straight lines between neighbouring cells. The pkg directory is
// organized as follows:
//
//  1. [area] - Rooms, directions, grid positions and connection classification
//  2. [layout] - The incremental builder that places, repairs and compacts
//  3. [world] - World files (JSON/YAML) and their conversion to areas
//  4. [history] - Recorded layout steps and their compressed file format
//  5. [render] - SVG, PNG, text and Graphviz output
//  6. [pipeline] - Orchestration (world → layout → render) with caching
//  7. [cache], [store] - Layout cache and history store backends
//
// # Data Flow
//
//	World file (YAML/JSON)
//	         ↓
//	   world.ToArea
//	         ↓
//	  layout.Builder  →  history.Document  →  store
//	         ↓
//	     render.*
//
// [area]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area
// [layout]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/layout
// [world]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/world
// [history]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history
// [render]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/render
// [pipeline]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline
// [cache]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/cache
// [store]: github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/store
package pkg
