package area

import (
	"fmt"
	"strings"
)

// Direction is one of the six exits a room can have. Up and Down have no third
// axis on the map; they are drawn as diagonals.
type Direction int

const (
	North Direction = iota
	East
	South
	West
	Up
	Down
)

// AllDirections lists every direction in canonical order. Iteration over a
// room's exits always follows this order.
var AllDirections = []Direction{North, East, South, West, Up, Down}

// PlanarDirections are the four directions that move along a single grid axis.
var PlanarDirections = []Direction{North, East, South, West}

// Axis groups directions whose lines run the same way on the grid.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
	AxisDiagonal
)

var directionNames = [...]string{"north", "east", "south", "west", "up", "down"}

// String returns the lower-case direction name.
func (d Direction) String() string {
	if d < North || d > Down {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the six known directions.
func (d Direction) Valid() bool { return d >= North && d <= Down }

// Opposite returns the reverse direction: N<->S, E<->W, Up<->Down.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	}
	return d
}

// Delta returns the unit grid offset of one step in direction d.
// Y grows downwards, so North is (0,-1). Up maps to (1,-1) and Down to (-1,1).
func (d Direction) Delta() Point {
	switch d {
	case North:
		return Point{0, -1}
	case East:
		return Point{1, 0}
	case South:
		return Point{0, 1}
	case West:
		return Point{-1, 0}
	case Up:
		return Point{1, -1}
	case Down:
		return Point{-1, 1}
	}
	return Point{}
}

// Axis returns the grid axis the direction's lines run along.
func (d Direction) Axis() Axis {
	switch d {
	case East, West:
		return AxisHorizontal
	case North, South:
		return AxisVertical
	}
	return AxisDiagonal
}

// IsHorizontal reports whether d is East or West.
func (d Direction) IsHorizontal() bool { return d.Axis() == AxisHorizontal }

// IsVertical reports whether d is North or South.
func (d Direction) IsVertical() bool { return d.Axis() == AxisVertical }

// IsDiagonal reports whether d is Up or Down.
func (d Direction) IsDiagonal() bool { return d.Axis() == AxisDiagonal }

// ParseDirection accepts full names and single-letter abbreviations in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionFromDelta returns the direction whose unit delta equals p.
func DirectionFromDelta(p Point) (Direction, bool) {
	for _, d := range AllDirections {
		if d.Delta() == p {
			return d, true
		}
	}
	return 0, false
}

// StepsAlong reports whether delta lies exactly on the ray of direction d
// (right axis, right sign) and, if so, how many unit steps it spans.
func StepsAlong(delta Point, d Direction) (int, bool) {
	dv := d.Delta()
	switch {
	case dv.X != 0 && dv.Y != 0:
		k := delta.X * dv.X
		if k > 0 && delta.Y*dv.Y == k {
			return k, true
		}
	case dv.X != 0:
		if k := delta.X * dv.X; delta.Y == 0 && k > 0 {
			return k, true
		}
	case dv.Y != 0:
		if k := delta.Y * dv.Y; delta.X == 0 && k > 0 {
			return k, true
		}
	}
	return 0, false
}

// StraightPosition returns where dst has to be for the line src -> dst to run
// straight along d. The current distance along the ray is kept when it is
// positive, otherwise the target snaps to one step away.
func StraightPosition(src, dst Point, d Direction) Point {
	dv := d.Delta()
	delta := dst.Sub(src)
	var k int
	switch {
	case dv.X != 0 && dv.Y != 0:
		k = max(delta.X*dv.X, delta.Y*dv.Y)
	case dv.X != 0:
		k = delta.X * dv.X
	default:
		k = delta.Y * dv.Y
	}
	if k < 1 {
		k = 1
	}
	return src.Add(dv.Mul(k))
}
