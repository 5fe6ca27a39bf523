package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// MirrorPositions returns the position of every mirror, row by row
func MirrorPositions(g *Grid) []Position {
	var mirrors []Position
	for r := 0; r < g.Height(); r++ {
		for c := 0; c < g.Width(); c++ {
			p := Position{Row: r, Col: c}
			if g.ClassAt(p) == ClassMirror {
				mirrors = append(mirrors, p)
			}
		}
	}
	return mirrors
}

// DescribeCell returns a short human description of what occupies p
func DescribeCell(g *Grid, d *Directory, p Position) string {
	if !g.InBounds(p) {
		return "outside the grid"
	}
	if role, ok := d.OccupiedBy(p); ok {
		return role.String() + " tank facing " + d.Get(role).Facing.String()
	}
	switch cell := g.At(p); Classify(cell) {
	case ClassMirror:
		return cell.Orientation().String() + " mirror"
	case ClassBeam:
		return "laser beam"
	}
	return "empty"
}

// DryRun traces a shot by role on a copy of the grid without recording or
// pacing anything. The live grid is left untouched.
func DryRun(g *Grid, d *Directory, role Role) (*BeamResult, error) {
	scratch := g.Snapshot()
	dirCopy := *d
	tracer := &Tracer{}
	return tracer.Fire(scratch, &dirCopy, role)
}
