package service

import (
	"context"
	"time"

	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/solver"
)

// GameService defines all game-related operations
type GameService interface {
	// Game Management
	NewGame(ctx context.Context, mapName string) (*GameInfo, error)
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
	EndGame(ctx context.Context, gameID string) error

	// Game Operations
	Command(ctx context.Context, gameID, command string) (*CommandResult, error)

	// Game State
	State(ctx context.Context, gameID string) (*GameState, error)
	History(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error)
	SaveLog(ctx context.Context, gameID string) (string, error)

	// Solve plans a winning command sequence from the current position
	Solve(ctx context.Context, gameID string) (*solver.Plan, error)

	// Maps
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	LoadMap(ctx context.Context, mapName string) (*engine.MapConfig, error)

	// CleanupExpired flushes and forgets games idle for longer than maxAge
	CleanupExpired(ctx context.Context, maxAge time.Duration) int

	// Shutdown flushes every open log
	Shutdown(ctx context.Context) error
}

// SessionManager defines session storage operations. The manager owns
// LastAccessedAt; a Session's game and log are only touched under the
// service lock.
type SessionManager interface {
	Create(mapID string, config *engine.MapConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	LastAccessed(id string) (time.Time, error)
	CleanupExpiredSessions(maxAge time.Duration) int
}

// ConfigManager handles map loading
type ConfigManager interface {
	LoadMap(name string) (*engine.MapConfig, error)
	ListMaps() ([]*MapInfo, error)
	GetDefault() *engine.MapConfig
}
