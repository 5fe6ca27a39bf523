// Package validate checks Laser Tank map files. A map is valid when:
//   - the file parses as a JSON map or a plain text map
//   - dimensions are within limits and every piece lies inside the grid
//   - no two pieces share a cell
//   - the enemy can be hit from at least one cell the player can reach
//
// A map where the enemy already has the player in its line of sight is
// reported as valid with a warning, since the player loses before moving.
package validate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/lasertank/game/engine"
)

// Result captures the outcome of validating a single file. Config is set
// whenever the file parsed.
type Result struct {
	File     string
	Config   *engine.MapConfig
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// Map loads and validates a single map file.
func Map(filePath string) Result {
	result := Result{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := engine.LoadMapFile(filePath)
	if err != nil {
		result.Valid = false
		if errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid map: %v", err))
		}
		return result
	}
	result.Config = config

	g, d, err := engine.BuildGrid(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to build grid: %v", err))
		return result
	}

	if engine.EnemyHasShot(d) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Enemy at %s already has the player in its line of sight", d.Enemy.Pos))
	}

	reach := Reachability(g, d)
	if !reach.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reach.Errors...)
	result.Info = append(result.Info, reach.Info...)

	if result.Valid {
		result.Info = append([]string{
			fmt.Sprintf("✓ Name: %s", config.Name),
			fmt.Sprintf("✓ Grid: %dx%d", config.Height, config.Width),
			fmt.Sprintf("✓ Mirrors: %d", len(config.Mirrors)),
			fmt.Sprintf("✓ Player: %s facing %s", config.Player.Pos(), config.Player.Facing),
			fmt.Sprintf("✓ Enemy: %s facing %s", config.Enemy.Pos(), config.Enemy.Facing),
		}, result.Info...)
	}
	return result
}

// ReachableCells flood fills from the player over cells it can step into:
// in bounds, not a mirror and not the enemy.
func ReachableCells(g *engine.Grid, d *engine.Directory) []engine.Position {
	visited := map[engine.Position]bool{d.Player.Pos: true}
	queue := []engine.Position{d.Player.Pos}
	var cells []engine.Position

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		cells = append(cells, current)

		for _, dir := range engine.Directions {
			next := current.Step(dir)
			if visited[next] || !g.InBounds(next) {
				continue
			}
			if g.ClassAt(next) == engine.ClassMirror || next == d.Enemy.Pos {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return cells
}

// Reachability checks that some reachable cell and facing gives the
// player a shot that strikes the enemy, directly or off mirrors.
func Reachability(g *engine.Grid, d *engine.Directory) Result {
	result := Result{Valid: true}

	cells := ReachableCells(g, d)
	scratch := g.Snapshot()
	dir := *d
	scratch.Set(dir.Player.Pos, engine.Empty)

	shots := 0
	for _, p := range cells {
		for _, facing := range engine.Directions {
			dir.Player.Pos = p
			scratch.Set(p, engine.TankCell(facing))
			dir.Sync(scratch)

			beam, err := engine.DryRun(scratch, &dir, engine.Player)
			if err == nil && beam.Hit {
				shots++
			}
		}
		scratch.Set(p, engine.Empty)
	}

	if shots == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Enemy cannot be hit from any of the %d reachable cells", len(cells)))
		return result
	}
	result.Info = append(result.Info, fmt.Sprintf("✓ Reachability: %d cells, %d winning shots", len(cells), shots))
	return result
}

// MapFiles lists the map files in dir.
func MapFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.map", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// WriteReport prints one section per result and a closing verdict. It
// returns whether every map was valid.
func WriteReport(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			for _, warning := range result.Warnings {
				fmt.Fprintln(w, "  ⚠️  "+warning)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All maps are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some maps have errors")
	}
	return allValid
}
