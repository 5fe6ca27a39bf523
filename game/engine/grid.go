package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Cell is a single grid symbol from the closed cell alphabet.
type Cell byte

const (
	Empty          Cell = ' '
	TankUp         Cell = '^'
	TankDown       Cell = 'v'
	TankLeft       Cell = '<'
	TankRight      Cell = '>'
	MirrorForward  Cell = '/'
	MirrorBackward Cell = '\\'
	BeamHorizontal Cell = '-'
	BeamVertical   Cell = '|'

	borderGlyph = '*'
)

// CellClass groups cell symbols by what occupies the cell.
type CellClass uint8

const (
	ClassEmpty CellClass = iota
	ClassEntity
	ClassMirror
	ClassBeam
)

func (c CellClass) String() string {
	switch c {
	case ClassEmpty:
		return "empty"
	case ClassEntity:
		return "entity"
	case ClassMirror:
		return "mirror"
	case ClassBeam:
		return "beam"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Classify reports which class a symbol belongs to.
// Symbols outside the alphabet are a contract violation.
func Classify(c Cell) CellClass {
	switch c {
	case Empty:
		return ClassEmpty
	case TankUp, TankDown, TankLeft, TankRight:
		return ClassEntity
	case MirrorForward, MirrorBackward:
		return ClassMirror
	case BeamHorizontal, BeamVertical:
		return ClassBeam
	}
	violate("Classify", "unknown cell symbol %q", byte(c))
	return ClassEmpty
}

// TankCell returns the tank glyph for a facing.
func TankCell(d Direction) Cell {
	switch d {
	case Up:
		return TankUp
	case Down:
		return TankDown
	case Left:
		return TankLeft
	case Right:
		return TankRight
	}
	violate("TankCell", "invalid direction %d", d)
	return Empty
}

// MirrorCell returns the mirror glyph for an orientation.
func MirrorCell(o Orientation) Cell {
	switch o {
	case Forward:
		return MirrorForward
	case Backward:
		return MirrorBackward
	}
	violate("MirrorCell", "invalid orientation %d", o)
	return Empty
}

// BeamCell returns the transient glyph for a beam travelling along d.
func BeamCell(d Direction) Cell {
	if d.Horizontal() {
		return BeamHorizontal
	}
	return BeamVertical
}

// Facing decodes the direction of a tank glyph.
func (c Cell) Facing() Direction {
	switch c {
	case TankUp:
		return Up
	case TankDown:
		return Down
	case TankLeft:
		return Left
	case TankRight:
		return Right
	}
	violate("Cell.Facing", "%q is not a tank symbol", byte(c))
	return Up
}

// Orientation decodes the orientation of a mirror glyph.
func (c Cell) Orientation() Orientation {
	switch c {
	case MirrorForward:
		return Forward
	case MirrorBackward:
		return Backward
	}
	violate("Cell.Orientation", "%q is not a mirror symbol", byte(c))
	return Forward
}

// ParseCell decodes a symbol read from external text. Unlike Classify it
// returns an error instead of panicking.
func ParseCell(b byte) (Cell, error) {
	switch c := Cell(b); c {
	case Empty, TankUp, TankDown, TankLeft, TankRight,
		MirrorForward, MirrorBackward, BeamHorizontal, BeamVertical:
		return c, nil
	}
	return Empty, fmt.Errorf("unknown cell symbol %q", b)
}

// Grid is a fixed-size rectangle of cells.
type Grid struct {
	height int
	width  int
	cells  []Cell
}

// NewGrid allocates an empty grid of the given dimensions.
func NewGrid(height, width int) (*Grid, error) {
	if height < MinGridSize || width < MinGridSize || height > MaxGridSize || width > MaxGridSize {
		return nil, fmt.Errorf("%w: %dx%d outside [%d,%d]", ErrAllocation, height, width, MinGridSize, MaxGridSize)
	}
	if height*width > MaxCells {
		return nil, fmt.Errorf("%w: %d cells exceeds %d", ErrAllocation, height*width, MaxCells)
	}

	cells := make([]Cell, height*width)
	for i := range cells {
		cells[i] = Empty
	}
	return &Grid{height: height, width: width, cells: cells}, nil
}

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.height && p.Col >= 0 && p.Col < g.width
}

func (g *Grid) index(op string, p Position) int {
	if g.cells == nil {
		violate(op, "grid used after Destroy")
	}
	if !g.InBounds(p) {
		violate(op, "position %s outside %dx%d grid", p, g.height, g.width)
	}
	return p.Row*g.width + p.Col
}

// At returns the cell at p.
func (g *Grid) At(p Position) Cell {
	return g.cells[g.index("Grid.At", p)]
}

// Set stores c at p.
func (g *Grid) Set(p Position, c Cell) {
	g.cells[g.index("Grid.Set", p)] = c
}

// ClassAt classifies the cell at p.
func (g *Grid) ClassAt(p Position) CellClass {
	return Classify(g.At(p))
}

// Row returns a copy of row r as a string.
func (g *Grid) Row(r int) string {
	start := g.index("Grid.Row", Position{Row: r})
	return string(g.cells[start : start+g.width])
}

// Rows returns every row as a string, top to bottom.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	for r := range rows {
		rows[r] = g.Row(r)
	}
	return rows
}

// Snapshot returns a deep copy of g. Mutating either grid afterwards does
// not affect the other.
func (g *Grid) Snapshot() *Grid {
	if g.cells == nil {
		violate("Grid.Snapshot", "grid used after Destroy")
	}
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{height: g.height, width: g.width, cells: cells}
}

// Equal reports whether two grids have the same dimensions and contents.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.height != other.height || g.width != other.width {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Count returns how many cells belong to class.
func (g *Grid) Count(class CellClass) int {
	n := 0
	for _, c := range g.cells {
		if Classify(c) == class {
			n++
		}
	}
	return n
}

// Destroy releases the backing storage. The grid must not be used afterwards.
func (g *Grid) Destroy() {
	g.cells = nil
}

// WriteTo renders the grid framed by a '*' border, one row per line.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	border := strings.Repeat(string(borderGlyph), g.width+2)

	var n int64
	write := func(s string) error {
		m, err := bw.WriteString(s)
		n += int64(m)
		return err
	}

	if err := write(border + "\n"); err != nil {
		return n, err
	}
	for _, row := range g.Rows() {
		if err := write(string(borderGlyph) + row + string(borderGlyph) + "\n"); err != nil {
			return n, err
		}
	}
	if err := write(border + "\n"); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// String returns the bordered rendering.
func (g *Grid) String() string {
	var sb strings.Builder
	g.WriteTo(&sb)
	return sb.String()
}

// GridFromRows builds a grid from unframed rows of equal length.
func GridFromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrAllocation)
	}
	g, err := NewGrid(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), g.width)
		}
		for c := 0; c < len(row); c++ {
			cell, err := ParseCell(row[c])
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			g.cells[r*g.width+c] = cell
		}
	}
	return g, nil
}
