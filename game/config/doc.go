// Package config provides map management for the Laser Tank game.
//
// The config package handles:
//   - Loading maps from JSON or plain text files
//   - Map validation through the engine
//   - Default map selection
//   - Map discovery and listing
//
// Map Formats:
//
// Maps live in a single directory. A file ending in .json holds an
// engine.MapConfig. Files ending in .map or .txt use the plain format:
//
//	5 7       height and width
//	4 0 u     player row, column and facing
//	0 6 l     enemy row, column and facing
//	2 3 f     any number of mirrors: row, column, f for "/" or b for "\"
//
// The map id is the file name without its extension. When no "duel" map is
// on disk a built-in duel is served under that id.
//
// Usage:
//
//	manager, err := config.NewManager("maps")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	arena, err := manager.LoadMap("arena")
//	maps, err := manager.ListMaps()
//	fallback := manager.GetDefault()
package config
