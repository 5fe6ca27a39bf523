package service

import (
	"time"

	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/history"
)

// GameInfo provides information about a running game
type GameInfo struct {
	ID             string     `json:"id"`
	MapID          string     `json:"map_id"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	LogPath        string     `json:"log_path,omitempty"`
	State          *GameState `json:"state"`
}

// GameState is a read-only view of a game for clients
type GameState struct {
	GameID       string         `json:"game_id"`
	MapID        string         `json:"map_id"`
	Height       int            `json:"height"`
	Width        int            `json:"width"`
	Grid         []string       `json:"grid"`
	Player       engine.Entity  `json:"player"`
	Enemy        engine.Entity  `json:"enemy"`
	Outcome      engine.Outcome `json:"outcome"`
	GameOver     bool           `json:"game_over"`
	Message      string         `json:"message,omitempty"`
	Turns        int            `json:"turns"`
	EnemyHasShot bool           `json:"enemy_has_shot"`
	Snapshots    int            `json:"snapshots"`
}

// CommandResult contains the result of one player command and the enemy
// phase that follows it
type CommandResult struct {
	Command    string             `json:"command"`
	Report     *engine.TurnReport `json:"report"`
	EnemyPhase *engine.TurnReport `json:"enemy_phase,omitempty"`
	GameState  *GameState         `json:"game_state"`
	Events     []GameEvent        `json:"events"`
	Message    string             `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "turn", "step", "blocked", "fire", "reflect", "hit", "miss", "save", "enemy_fire", "game_over"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role,omitempty"`
}

// HistoryOptions configures snapshot history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryEntry is one recorded grid snapshot
type HistoryEntry struct {
	Index int      `json:"index"`
	Rows  []string `json:"rows"`
}

// HistoryResponse contains paginated snapshot history
type HistoryResponse struct {
	Entries     []HistoryEntry `json:"entries"`
	Total       int            `json:"total"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// MapInfo provides information about a map
type MapInfo struct {
	Filename    string `json:"filename,omitempty"`
	MapID       string `json:"map_id"` // The identifier to use for game creation
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	Mirrors     int    `json:"mirrors"`
}

// Session represents an active game and its history log
type Session struct {
	ID             string
	MapID          string
	Game           *engine.Game
	Log            *history.Log
	Map            *engine.MapConfig
	LogPath        string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewGameState builds the client view of a session
func NewGameState(sess *Session) *GameState {
	game := sess.Game
	grid := game.Grid()
	dir := game.Directory()
	outcome := game.Outcome()

	return &GameState{
		GameID:       sess.ID,
		MapID:        sess.MapID,
		Height:       grid.Height(),
		Width:        grid.Width(),
		Grid:         grid.Rows(),
		Player:       dir.Player,
		Enemy:        dir.Enemy,
		Outcome:      outcome,
		GameOver:     outcome.Over(),
		Message:      outcome.Message(),
		Turns:        game.Turns(),
		EnemyHasShot: !outcome.Over() && game.EnemyHasShot(),
		Snapshots:    sess.Log.Len(),
	}
}
