// Package engine provides the core simulation for the Laser Tank game.
//
// The engine package implements the game mechanics including:
//   - A fixed-size character grid and its cell alphabet
//   - The tank directory (position and facing of the player and the enemy)
//   - Face-then-step movement with boundary, mirror and tank collisions
//   - Laser beam tracing with mirror reflection
//   - Line-of-sight checks that trigger enemy fire
//   - Map configuration loading and validation
//
// Core Types:
//
// Grid holds the cells and is the single source of truth for the board.
// Directory caches where each tank is and which way it faces; the tank glyph
// on the grid is a projection of that facing. Tracer fires beams, and Game
// ties everything together into turns.
//
// Usage:
//
//	config, err := engine.LoadMapFile("maps/duel.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hist := history.New()
//	game, err := engine.NewGame(config, engine.Options{Recorder: hist})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := game.Turn(engine.CommandFire)
//
// Game Rules:
//
// Each turn the enemy fires first if the player stands in its line of sight.
// The player then turns, steps or fires. A directional command turns a tank
// that faces elsewhere; repeating it steps one cell. Beams bounce off "/" and
// "\" mirrors and the game ends when a beam strikes a tank.
//
// Broken invariants, such as an unknown cell symbol reaching a decoder or a
// tank outside the grid, panic with *ContractViolation.
package engine
