// Package layout places the rooms of an [area.Area] on a grid.
//
// The [Builder] walks the room graph breadth-first from a seed room. Each
// newly placed room is followed by three repair passes that run until none
// of them makes progress:
//
//  1. Obstacles: rooms sitting on a straight connection are removed from the
//     grid, together with any small fragment the removal cuts off.
//  2. Straighten: bent connections are fixed by pushing one endpoint (and
//     everything dragged along with it) onto the other's line.
//  3. Intersections: a room whose connection crosses another one is removed
//     when that reduces the number of crossings.
//
// Removed rooms get one more chance once the frontier is empty. The layout
// is then compacted in the four planar directions.
//
// Every committed mutation is recorded as a snapshot. The history is capped
// by [Options.MaxSteps]; running into the cap returns the partial [Result]
// together with [ErrOutOfSteps].
//
// # Usage
//
//	b := layout.NewBuilder(a, layout.DefaultOptions())
//	res, err := b.Build(ctx)
//	if errors.Is(err, layout.ErrOutOfSteps) {
//	    // res holds the partial history
//	}
//	final := res.Last()
package layout
