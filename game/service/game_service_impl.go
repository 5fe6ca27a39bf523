package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/solver"
	"github.com/wricardo/lasertank/logger"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNoLogPath    = errors.New("no log file configured for game")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	maps     ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, maps ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		maps:     maps,
	}
}

// NewGame creates a game on the named map, or the default map when mapName
// is empty, and runs the enemy phase of the first turn.
func (s *gameServiceImpl) NewGame(ctx context.Context, mapName string) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapID := mapName
	var config *engine.MapConfig
	if mapName != "" {
		var err error
		config, err = s.maps.LoadMap(mapName)
		if err != nil {
			return nil, s.mapError(mapName, err)
		}
	} else {
		config = s.maps.GetDefault()
		mapID = config.Name
	}

	sess, err := s.sessions.Create(mapID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if _, err := sess.Game.BeginTurn(); err != nil {
		s.sessions.Delete(sess.ID)
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"game": sess.ID, "map": mapID}).Info("game started")
	return s.gameInfo(sess), nil
}

// mapError lists the available maps when the requested one does not exist
func (s *gameServiceImpl) mapError(mapName string, err error) error {
	available, listErr := s.maps.ListMaps()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("failed to load map %s: %w", mapName, err)
	}
	ids := make([]string, 0, len(available))
	for _, m := range available {
		ids = append(ids, m.MapID)
	}
	return fmt.Errorf("failed to load map '%s': %w. Available maps: %v", mapName, err, ids)
}

// gameInfo reads the access time through the session manager, which owns it
func (s *gameServiceImpl) gameInfo(sess *Session) *GameInfo {
	lastAccessed, _ := s.sessions.LastAccessed(sess.ID)
	return &GameInfo{
		ID:             sess.ID,
		MapID:          sess.MapID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: lastAccessed,
		LogPath:        sess.LogPath,
		State:          NewGameState(sess),
	}
}

func (s *gameServiceImpl) getSession(gameID string) (*Session, error) {
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGameNotFound, err)
	}
	return sess, nil
}

// GetGame retrieves game information
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(gameID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(gameID)

	return s.gameInfo(sess), nil
}

// ListGames returns all active games
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.gameInfo(sess))
	}
	return result, nil
}

// EndGame flushes the game's log when it has a log file, then releases the
// log and forgets the game. A failed flush leaves the game in place.
func (s *gameServiceImpl) EndGame(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(gameID)
	if err != nil {
		return err
	}

	if sess.LogPath != "" {
		if err := sess.Log.FlushFile(sess.LogPath); err != nil {
			return err
		}
	}

	sess.Game.Quit()
	sess.Log.Destroy()
	logger.Log.WithFields(logrus.Fields{"game": sess.ID, "outcome": sess.Game.Outcome().String()}).Info("game ended")
	return s.sessions.Delete(gameID)
}

// Command applies one player command, then runs the enemy phase of the next
// turn so the returned state already reflects any enemy fire.
func (s *gameServiceImpl) Command(ctx context.Context, gameID, command string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(gameID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(gameID)

	cmd, err := engine.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	if outcome := sess.Game.Outcome(); outcome.Over() {
		return nil, fmt.Errorf("%w: %s", engine.ErrGameOver, outcome.Message())
	}

	report, err := sess.Game.Apply(cmd)
	if err != nil {
		return nil, err
	}

	result := &CommandResult{
		Command: cmd.String(),
		Report:  report,
		Events:  playerEvents(report),
	}

	if !report.Outcome.Over() {
		enemy, err := sess.Game.BeginTurn()
		if err != nil {
			return nil, err
		}
		if enemy.EnemyFired {
			result.EnemyPhase = enemy
			result.Events = append(result.Events, beamEvents(engine.Enemy, enemy.EnemyBeam)...)
		}
	}

	result.GameState = NewGameState(sess)
	if result.GameState.GameOver {
		result.Events = append(result.Events, newEvent("game_over", result.GameState.Message, ""))
		result.Message = result.GameState.Message
	} else if len(result.Events) > 0 {
		result.Message = result.Events[len(result.Events)-1].Message
	}

	return result, nil
}

func newEvent(kind, message, role string) GameEvent {
	return GameEvent{Type: kind, Message: message, Timestamp: time.Now(), Role: role}
}

// playerEvents describes the player phase of a turn
func playerEvents(report *engine.TurnReport) []GameEvent {
	var events []GameEvent
	role := engine.Player.String()

	if move := report.Move; move != nil {
		switch move.Action {
		case engine.Turned:
			events = append(events, newEvent("turn", fmt.Sprintf("Player turned to face %s", move.Facing), role))
		case engine.Stepped:
			events = append(events, newEvent("step", fmt.Sprintf("Player moved %s from %s to %s", move.Facing, move.From, move.To), role))
		case engine.Blocked:
			events = append(events, newEvent("blocked", fmt.Sprintf("Player blocked by %s", move.Reason), role))
		}
	}

	if report.PlayerBeam != nil {
		events = append(events, beamEvents(engine.Player, report.PlayerBeam)...)
	}

	if report.Command == engine.CommandSave.String() {
		switch {
		case report.Saved:
			events = append(events, newEvent("save", "History saved", role))
		case report.PersistErr != nil:
			events = append(events, newEvent("save", fmt.Sprintf("Save failed: %v", report.PersistErr), role))
		default:
			events = append(events, newEvent("save", "No log file configured", role))
		}
	}

	return events
}

// beamEvents describes one shot
func beamEvents(firer engine.Role, beam *engine.BeamResult) []GameEvent {
	if beam == nil {
		return nil
	}
	role := firer.String()
	kind := "fire"
	if firer == engine.Enemy {
		kind = "enemy_fire"
	}

	events := []GameEvent{newEvent(kind, fmt.Sprintf("%s fired (%d frames, %d reflections)", capitalize(role), beam.Frames, beam.Reflections), role)}
	if beam.Hit {
		events = append(events, newEvent("hit", fmt.Sprintf("%s beam hit the %s", capitalize(role), beam.Target), role))
	} else {
		events = append(events, newEvent("miss", fmt.Sprintf("%s beam left the grid", capitalize(role)), role))
	}
	return events
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// State returns the current game state
func (s *gameServiceImpl) State(ctx context.Context, gameID string) (*GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(gameID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(gameID)

	return NewGameState(sess), nil
}

// History returns paginated grid snapshots
func (s *gameServiceImpl) History(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(gameID)
	if err != nil {
		return nil, err
	}

	total := sess.Log.Len()

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "asc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []HistoryEntry{}
	for i := start; i < end; i++ {
		idx := i
		if opts.Order == "desc" {
			idx = total - 1 - i
		}
		g, err := sess.Log.Entry(idx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, HistoryEntry{Index: idx, Rows: g.Rows()})
	}

	return &HistoryResponse{
		Entries:     entries,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// SaveLog writes the game's full history to its log file
func (s *gameServiceImpl) SaveLog(ctx context.Context, gameID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(gameID)
	if err != nil {
		return "", err
	}
	if sess.LogPath == "" {
		return "", ErrNoLogPath
	}
	if err := sess.Log.FlushFile(sess.LogPath); err != nil {
		return "", err
	}
	return sess.LogPath, nil
}

// Solve plans a winning command sequence from the game's current position.
// The search runs on a copy of the map, so the game itself is not touched.
func (s *gameServiceImpl) Solve(ctx context.Context, gameID string) (*solver.Plan, error) {
	s.mu.RLock()
	sess, err := s.getSession(gameID)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	if sess.Game.Outcome().Over() {
		s.mu.RUnlock()
		return nil, engine.ErrGameOver
	}
	config := *sess.Map
	player := sess.Game.Directory().Player
	config.Player = engine.TankSpec{Row: player.Pos.Row, Col: player.Pos.Col, Facing: player.Facing}
	s.mu.RUnlock()

	return solver.Solve(ctx, &config)
}

// ListMaps returns available maps
func (s *gameServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.maps.ListMaps()
}

// LoadMap loads a specific map
func (s *gameServiceImpl) LoadMap(ctx context.Context, mapName string) (*engine.MapConfig, error) {
	return s.maps.LoadMap(mapName)
}

// CleanupExpired removes games idle for longer than maxAge. It holds the
// service lock so no command can record into a log being flushed and freed.
func (s *gameServiceImpl) CleanupExpired(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	if removed > 0 {
		logger.Log.WithField("removed", removed).Info("Cleaned up expired games")
	}
	return removed
}

// Shutdown flushes the log of every game that has a log file. Games stay
// registered; every failure is reported.
func (s *gameServiceImpl) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if sess.LogPath == "" {
			continue
		}
		if err := sess.Log.FlushFile(sess.LogPath); err != nil {
			logger.Log.WithError(err).WithField("game", sess.ID).Error("failed to flush history at shutdown")
			errs = append(errs, fmt.Errorf("game %s: %w", sess.ID, err))
		}
	}
	return errors.Join(errs...)
}
