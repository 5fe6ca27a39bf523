// Package session provides in-memory game session management for Laser Tank.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Wiring of each game to its own history log
//   - Per-game log files under an optional directory
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager creates and tracks sessions. A service.Session bundles an
// engine.Game, the history.Log recording it and the path the log is flushed
// to. The session ID is the game ID, a random UUID; lookups ignore case.
//
// Usage:
//
//	manager := session.NewManagerWithOptions(session.Options{LogDir: "logs"})
//
//	sess, err := manager.Create("duel", engine.DefaultMap())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := sess.Game.Turn(engine.CommandFire)
//
// Sessions live only in memory. A "save" command, or the game service ending
// a game, writes the log to <LogDir>/<id>.log.
package session
