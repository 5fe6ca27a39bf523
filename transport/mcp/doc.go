// Package mcp provides a Model Context Protocol server for the Laser Tank game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Text renderings of the grid, turn events and history
//   - Stdio transport
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - list_maps: List available maps
//   - new_game: Start a game on a map
//   - list_games: List running games
//   - game_state: Get the bordered grid and both tanks (text or JSON)
//   - command: Apply one command (up/down/left/right/fire/save)
//   - history: Page through recorded grid snapshots
//   - save_log: Write a game's history to its log file
//   - end_game: Save the log and close a game
//   - describe_cell: Describe one cell
//   - solve: Find a shortest winning command sequence
//   - game_instructions: Get the rules
//
// Every tool calls the GameService directly; there is no network transport.
//
// Usage:
//
//	srv := mcp.NewServer(gameService, "1.0.0")
//	if err := srv.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
//
// Stdout carries the protocol, so logging must go to stderr.
package mcp
