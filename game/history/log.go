package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/logger"
)

var (
	ErrFlush     = errors.New("failed to flush history")
	ErrNoEntry   = errors.New("history entry not found")
	ErrParse     = errors.New("malformed history")
	ErrDestroyed = errors.New("history log destroyed")
)

const (
	ruleGlyph   = "-"
	borderGlyph = '*'
)

// Log is an append-only sequence of grid snapshots in event order.
type Log struct {
	entries   []*engine.Grid
	destroyed bool
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append stores a deep copy of g at the tail. Identical consecutive
// snapshots are kept. A destroyed log drops the snapshot with a warning.
func (l *Log) Append(g *engine.Grid) {
	if l.destroyed {
		logger.Log.Warn("snapshot appended to a destroyed history log")
		return
	}
	l.entries = append(l.entries, g.Snapshot())
}

// Len returns the number of snapshots appended since creation.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entry returns a copy of snapshot i.
func (l *Log) Entry(i int) (*engine.Grid, error) {
	if i < 0 || i >= len(l.entries) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoEntry, i, len(l.entries))
	}
	return l.entries[i].Snapshot(), nil
}

// Flush writes every snapshot in order. Consecutive snapshots are separated
// by a dashed rule as wide as the following snapshot plus its border. The
// in-memory log is left untouched, so Flush may be called repeatedly.
func (l *Log) Flush(w io.Writer) error {
	if l.destroyed {
		return ErrDestroyed
	}
	bw := bufio.NewWriter(w)
	for i, g := range l.entries {
		if i > 0 {
			rule := "\n" + strings.Repeat(ruleGlyph, g.Width()+2) + "\n\n"
			if _, err := bw.WriteString(rule); err != nil {
				return fmt.Errorf("%w: %w", ErrFlush, err)
			}
		}
		if _, err := g.WriteTo(bw); err != nil {
			return fmt.Errorf("%w: %w", ErrFlush, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrFlush, err)
	}
	return nil
}

// FlushFile rewrites path with the full log. On failure the log stays intact
// and the call may be retried.
func (l *Log) FlushFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFlush, err)
	}
	if err := l.Flush(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFlush, err)
	}
	return nil
}

// Destroy releases every snapshot. It is safe on an empty log and on a log
// that was already destroyed.
func (l *Log) Destroy() {
	for _, g := range l.entries {
		g.Destroy()
	}
	l.entries = nil
	l.destroyed = true
}

// Parse reads a flushed log back into grids.
func Parse(r io.Reader) ([]*engine.Grid, error) {
	scanner := bufio.NewScanner(r)
	var (
		grids    []*engine.Grid
		rows     []string
		inGrid   bool
		topWidth int
		lineNo   int
	)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if isBorder(line) {
			if !inGrid {
				inGrid = true
				topWidth = len(line)
				rows = rows[:0]
				continue
			}
			if len(rows) == 0 {
				return nil, fmt.Errorf("%w: line %d: grid has no rows", ErrParse, lineNo)
			}
			if len(line) != topWidth {
				return nil, fmt.Errorf("%w: line %d: border width %d does not match %d", ErrParse, lineNo, len(line), topWidth)
			}
			g, err := engine.GridFromRows(rows)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrParse, lineNo, err)
			}
			grids = append(grids, g)
			inGrid = false
			continue
		}

		if !inGrid {
			if line == "" || strings.Trim(line, ruleGlyph) == "" {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: unexpected text %q", ErrParse, lineNo, line)
		}

		if len(line) < 2 || rune(line[0]) != borderGlyph || rune(line[len(line)-1]) != borderGlyph {
			return nil, fmt.Errorf("%w: line %d: row is not framed", ErrParse, lineNo)
		}
		if len(line) != topWidth {
			return nil, fmt.Errorf("%w: line %d: row width %d does not match border %d", ErrParse, lineNo, len(line), topWidth)
		}
		rows = append(rows, line[1:len(line)-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if inGrid {
		return nil, fmt.Errorf("%w: unterminated grid", ErrParse)
	}
	return grids, nil
}

func isBorder(line string) bool {
	return len(line) >= 3 && strings.Trim(line, string(borderGlyph)) == ""
}
