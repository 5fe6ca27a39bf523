// Package service provides the business logic layer for the Laser Tank game.
//
// The service package implements:
//   - Multi-game management
//   - Command parsing and turn sequencing
//   - Paginated access to each game's grid history
//   - Log file saving and the flush at shutdown
//   - Shortest winning plans from a game's current position
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles game creation, retrieval, and lifecycle.
// ConfigManager loads and lists maps.
//
// Architecture:
//
// The service layer sits between the front ends (terminal, console, MCP) and
// the game engine. Each session owns one engine.Game and the history.Log that
// records it.
//
// Usage:
//
//	sessionMgr := session.NewManagerWithOptions(session.Options{LogDir: "logs"})
//	mapMgr, _ := config.NewManager("maps")
//	gameService := service.NewGameService(sessionMgr, mapMgr)
//
//	info, err := gameService.NewGame(ctx, "duel")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Command(ctx, info.ID, "f")
//
// Turn Order:
//
// NewGame runs the enemy phase of the first turn before returning. Command
// applies the player's command and then runs the enemy phase of the next
// turn, so a returned state never hides a pending enemy shot.
package service
