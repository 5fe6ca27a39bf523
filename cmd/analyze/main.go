// Command analyze prints quick, human-readable heuristics about the map files
// in the project's maps directory. It summarizes dimensions, mirror counts and
// tank placement, traces both opening shots without touching the map, and
// lists which facings would win from the player's starting cell.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/lasertank/game/engine"
)

func main() {
	dir := "maps"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.map", "*.txt"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Printf("No maps found in %s, analyzing the built-in map\n", dir)
		analyzeConfig(os.Stdout, engine.DefaultMap())
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeMap(os.Stdout, file)
	}
}

func analyzeMap(w io.Writer, path string) {
	config, err := engine.LoadMapFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading map: %v\n", err)
		return
	}
	analyzeConfig(w, config)
}

func analyzeConfig(w io.Writer, config *engine.MapConfig) {
	g, d, err := engine.BuildGrid(config)
	if err != nil {
		fmt.Fprintf(w, "Error building grid: %v\n", err)
		return
	}

	mirrors := engine.MirrorPositions(g)
	forward := 0
	for _, p := range mirrors {
		if g.At(p).Orientation() == engine.Forward {
			forward++
		}
	}

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", config.Height, config.Width)
	fmt.Fprintf(w, "Mirrors: %d (%d forward, %d backward)\n", len(mirrors), forward, len(mirrors)-forward)
	fmt.Fprintf(w, "Player: %s facing %s\n", d.Player.Pos, d.Player.Facing)
	fmt.Fprintf(w, "Enemy: %s facing %s\n", d.Enemy.Pos, d.Enemy.Facing)
	fmt.Fprintf(w, "Distance: %d\n", engine.ManhattanDistance(d.Player.Pos, d.Enemy.Pos))

	if engine.EnemyHasShot(d) {
		fmt.Fprintf(w, "⚠️  WARNING: the enemy fires before the player's first move\n")
	} else {
		fmt.Fprintf(w, "✅ Player is out of the enemy's line of sight\n")
	}

	for _, role := range []engine.Role{engine.Player, engine.Enemy} {
		beam, err := engine.DryRun(g, d, role)
		fmt.Fprintf(w, "Opening shot (%s): %s\n", role, describeShot(beam, err))
	}

	winning := winningFacings(g, d)
	if len(winning) == 0 {
		fmt.Fprintf(w, "No facing wins from the starting cell\n")
	} else {
		fmt.Fprintf(w, "Winning facings from the starting cell: %v\n", winning)
	}
}

func describeShot(beam *engine.BeamResult, err error) string {
	if err != nil {
		return fmt.Sprintf("does not terminate (%v)", err)
	}
	if beam.Hit {
		return fmt.Sprintf("hits the %s after %d reflections", beam.Target, beam.Reflections)
	}
	return fmt.Sprintf("leaves the grid after %d cells and %d reflections", len(beam.Path), beam.Reflections)
}

// winningFacings returns the directions the player could turn to and fire
// from its current cell to hit the enemy.
func winningFacings(g *engine.Grid, d *engine.Directory) []engine.Direction {
	var winning []engine.Direction
	for _, facing := range engine.Directions {
		dir := *d
		scratch := g.Snapshot()
		scratch.Set(dir.Player.Pos, engine.TankCell(facing))
		dir.Sync(scratch)

		beam, err := engine.DryRun(scratch, &dir, engine.Player)
		if err == nil && beam.Hit {
			winning = append(winning, facing)
		}
	}
	return winning
}
