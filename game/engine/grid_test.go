package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestNewGrid_AllEmpty(t *testing.T) {
	g, err := NewGrid(3, 4)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	if g.Height() != 3 || g.Width() != 4 {
		t.Fatalf("Expected 3x4 grid, got %dx%d", g.Height(), g.Width())
	}
	if got := g.Count(ClassEmpty); got != 12 {
		t.Errorf("Expected 12 empty cells, got %d", got)
	}
}

func TestNewGrid_AllocationErrors(t *testing.T) {
	tests := []struct {
		name          string
		height, width int
	}{
		{"zero height", 0, 5},
		{"zero width", 5, 0},
		{"negative", -1, -1},
		{"too tall", MaxGridSize + 1, 5},
		{"too wide", 5, MaxGridSize + 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g, err := NewGrid(test.height, test.width)
			if !errors.Is(err, ErrAllocation) {
				t.Errorf("Expected ErrAllocation, got %v", err)
			}
			if g != nil {
				t.Error("Expected no grid on failure")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		cell     Cell
		expected CellClass
	}{
		{Empty, ClassEmpty},
		{TankUp, ClassEntity},
		{TankDown, ClassEntity},
		{TankLeft, ClassEntity},
		{TankRight, ClassEntity},
		{MirrorForward, ClassMirror},
		{MirrorBackward, ClassMirror},
		{BeamHorizontal, ClassBeam},
		{BeamVertical, ClassBeam},
	}

	for _, test := range tests {
		t.Run(string(test.cell), func(t *testing.T) {
			if got := Classify(test.cell); got != test.expected {
				t.Errorf("Classify(%q): expected %s, got %s", test.cell, test.expected, got)
			}
		})
	}

	expectViolation(t, "Classify('x')", func() { Classify(Cell('x')) })
}

func TestSymbolMapping_Bidirectional(t *testing.T) {
	for _, d := range Directions {
		if got := TankCell(d).Facing(); got != d {
			t.Errorf("TankCell(%s).Facing(): expected %s, got %s", d, d, got)
		}
	}
	for _, o := range []Orientation{Forward, Backward} {
		if got := MirrorCell(o).Orientation(); got != o {
			t.Errorf("MirrorCell(%s).Orientation(): expected %s, got %s", o, o, got)
		}
	}
	if MirrorCell(Forward) != '/' || MirrorCell(Backward) != '\\' {
		t.Error("Expected forward mirror '/' and backward mirror '\\'")
	}
	if BeamCell(Left) != '-' || BeamCell(Up) != '|' {
		t.Error("Expected '-' for horizontal beams and '|' for vertical beams")
	}

	expectViolation(t, "Facing of mirror", func() { MirrorForward.Facing() })
	expectViolation(t, "Orientation of tank", func() { TankUp.Orientation() })
	expectViolation(t, "Facing of unknown", func() { Cell('?').Facing() })
}

func TestParseCell(t *testing.T) {
	for _, b := range []byte(" ^v<>/\\-|") {
		if _, err := ParseCell(b); err != nil {
			t.Errorf("ParseCell(%q): unexpected error %v", b, err)
		}
	}
	if _, err := ParseCell('#'); err == nil {
		t.Error("Expected error for unknown symbol")
	}
}

func TestSnapshot_NoAliasing(t *testing.T) {
	g, _ := NewGrid(2, 2)
	g.Set(Position{0, 0}, MirrorForward)

	snap := g.Snapshot()
	if !snap.Equal(g) {
		t.Fatal("Expected snapshot to equal source")
	}

	g.Set(Position{1, 1}, TankUp)
	if snap.At(Position{1, 1}) != Empty {
		t.Error("Mutating the source changed the snapshot")
	}

	snap.Set(Position{0, 1}, MirrorBackward)
	if g.At(Position{0, 1}) != Empty {
		t.Error("Mutating the snapshot changed the source")
	}
}

func TestGrid_OutOfBoundsAccess(t *testing.T) {
	g, _ := NewGrid(2, 3)

	if g.InBounds(Position{2, 0}) || g.InBounds(Position{0, 3}) || g.InBounds(Position{-1, 0}) {
		t.Error("Expected positions outside the grid to be out of bounds")
	}
	if !g.InBounds(Position{1, 2}) {
		t.Error("Expected (1,2) to be in bounds")
	}

	expectViolation(t, "At outside", func() { g.At(Position{5, 5}) })
	expectViolation(t, "Set outside", func() { g.Set(Position{-1, 0}, Empty) })
}

func TestGrid_Destroy(t *testing.T) {
	g, _ := NewGrid(2, 2)
	g.Destroy()
	expectViolation(t, "At after Destroy", func() { g.At(Position{0, 0}) })
}

func TestGrid_WriteTo(t *testing.T) {
	g, _ := NewGrid(2, 3)
	g.Set(Position{0, 0}, TankRight)
	g.Set(Position{1, 2}, MirrorBackward)

	expected := strings.Join([]string{
		"*****",
		"*>  *",
		"*  \\*",
		"*****",
	}, "\n") + "\n"

	if got := g.String(); got != expected {
		t.Errorf("Unexpected rendering:\n%q\nexpected:\n%q", got, expected)
	}
}

func TestGridFromRows(t *testing.T) {
	g, err := GridFromRows([]string{"> /", " -<"})
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	if g.At(Position{1, 1}) != BeamHorizontal {
		t.Errorf("Expected beam at (1,1), got %q", g.At(Position{1, 1}))
	}

	if _, err := GridFromRows([]string{"> ", "<"}); err == nil {
		t.Error("Expected error for ragged rows")
	}
	if _, err := GridFromRows([]string{"x"}); err == nil {
		t.Error("Expected error for unknown symbol")
	}
}
