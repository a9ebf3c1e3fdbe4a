package area

import (
	"testing"

	"pgregory.net/rapid"
)

func TestDirectionOppositeIsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		idx := rapid.IntRange(0, len(AllDirections)-1).Draw(t, "dir_idx")
		d := AllDirections[idx]
		if got := d.Opposite().Opposite(); got != d {
			t.Fatalf("%s.Opposite().Opposite() = %s", d, got)
		}
		if d.Delta() != d.Opposite().Delta().Neg() {
			t.Fatalf("Delta(%s) = %v, want negation of %v", d, d.Delta(), d.Opposite().Delta())
		}
	})
}

func TestDirectionDelta(t *testing.T) {
	tests := []struct {
		d    Direction
		want Point
	}{
		{North, Point{0, -1}},
		{East, Point{1, 0}},
		{South, Point{0, 1}},
		{West, Point{-1, 0}},
		{Up, Point{1, -1}},
		{Down, Point{-1, 1}},
	}
	for _, tt := range tests {
		if got := tt.d.Delta(); got != tt.want {
			t.Errorf("%s.Delta() = %v, want %v", tt.d, got, tt.want)
		}
		if got, ok := DirectionFromDelta(tt.want); !ok || got != tt.d {
			t.Errorf("DirectionFromDelta(%v) = %s, %v", tt.want, got, ok)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"north", North, false},
		{"N", North, false},
		{" East ", East, false},
		{"u", Up, false},
		{"DOWN", Down, false},
		{"northeast", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDirection(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStepsAlong(t *testing.T) {
	tests := []struct {
		name  string
		delta Point
		d     Direction
		steps int
		ok    bool
	}{
		{"adjacent east", Point{1, 0}, East, 1, true},
		{"far east", Point{4, 0}, East, 4, true},
		{"wrong sign", Point{-1, 0}, East, 0, false},
		{"off axis", Point{1, 1}, East, 0, false},
		{"north", Point{0, -3}, North, 3, true},
		{"up diagonal", Point{2, -2}, Up, 2, true},
		{"up skewed", Point{2, -1}, Up, 0, false},
		{"down", Point{-1, 1}, Down, 1, true},
		{"zero", Point{}, South, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, ok := StepsAlong(tt.delta, tt.d)
			if steps != tt.steps || ok != tt.ok {
				t.Errorf("StepsAlong(%v, %s) = %d, %v, want %d, %v", tt.delta, tt.d, steps, ok, tt.steps, tt.ok)
			}
		})
	}
}

func TestStraightPosition(t *testing.T) {
	tests := []struct {
		src, dst Point
		d        Direction
		want     Point
	}{
		{Point{0, 0}, Point{3, 2}, East, Point{3, 0}},
		{Point{0, 0}, Point{-2, 5}, East, Point{1, 0}},
		{Point{0, 0}, Point{1, -4}, North, Point{0, -4}},
		{Point{0, 0}, Point{3, -1}, Up, Point{3, -3}},
		{Point{2, 2}, Point{2, 2}, Down, Point{1, 3}},
	}
	for _, tt := range tests {
		if got := StraightPosition(tt.src, tt.dst, tt.d); got != tt.want {
			t.Errorf("StraightPosition(%v, %v, %s) = %v, want %v", tt.src, tt.dst, tt.d, got, tt.want)
		}
	}
}
