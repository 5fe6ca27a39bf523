// Package history records the game as an append-only sequence of grid
// snapshots and writes it out as flat text.
//
// Every snapshot is a deep copy taken at one instant: the grid after each
// player command, and every intermediate frame of a travelling beam. The
// text form renders each snapshot inside a '*' border and separates
// consecutive snapshots with a dashed rule two characters wider than the
// grid. Parse reads that text back for replay.
package history
