package area

import "fmt"

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul scales p by k.
func (p Point) Mul(k int) Point { return Point{p.X * k, p.Y * k} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Manhattan returns |x|+|y|.
func (p Point) Manhattan() int { return abs(p.X) + abs(p.Y) }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rectangle is an axis-aligned box of grid cells. A zero Width or Height
// means the rectangle is empty.
type Rectangle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle covers no cells.
func (r Rectangle) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Right is the first column past the rectangle.
func (r Rectangle) Right() int { return r.X + r.Width }

// Bottom is the first row past the rectangle.
func (r Rectangle) Bottom() int { return r.Y + r.Height }

// Contains reports whether p lies inside r.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Area returns the number of cells covered.
func (r Rectangle) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X, r.Y, r.Width, r.Height)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
