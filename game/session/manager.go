package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/history"
	"github.com/wricardo/lasertank/game/service"
	"github.com/wricardo/lasertank/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidMap      = errors.New("invalid map")
)

// Options configures every game a Manager creates
type Options struct {
	// LogDir receives one <game id>.log file per game. Empty disables log files.
	LogDir string
	// Pacer runs between beam frames. Nil means no pause.
	Pacer engine.Pacer
	// Display, when set, is shown every recorded grid.
	Display engine.Display
}

// Manager handles game session lifecycle. LastAccessedAt of a registered
// session is only read and written under mu.
type Manager struct {
	sessions map[string]*service.Session
	opts     Options
	mu       sync.RWMutex
}

// NewManager creates a new session manager without log files
func NewManager() *Manager {
	return NewManagerWithOptions(Options{})
}

// NewManagerWithOptions creates a new session manager
func NewManagerWithOptions(opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		opts:     opts,
	}
}

// Create starts a game on config and registers it under the game's ID
func (m *Manager) Create(mapID string, config *engine.MapConfig) (*service.Session, error) {
	if config == nil {
		return nil, ErrInvalidMap
	}

	sess := &service.Session{
		MapID: mapID,
		Log:   history.New(),
		Map:   config,
	}

	game, err := engine.NewGame(config, engine.Options{
		Recorder:  sess.Log,
		Display:   m.opts.Display,
		Pacer:     m.opts.Pacer,
		Persister: engine.PersisterFunc(func() error { return persist(sess) }),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	now := time.Now()
	sess.ID = game.ID
	sess.Game = game
	sess.CreatedAt = now
	sess.LastAccessedAt = now
	if m.opts.LogDir != "" {
		sess.LogPath = filepath.Join(m.opts.LogDir, game.ID+".log")
	}

	m.mu.Lock()
	m.sessions[strings.ToLower(sess.ID)] = sess
	m.mu.Unlock()

	logger.Log.WithFields(logrus.Fields{"session": sess.ID, "map": mapID}).Debug("session created")
	return sess, nil
}

// persist flushes the session log to its file
func persist(sess *service.Session) error {
	if sess.LogPath == "" {
		return service.ErrNoLogPath
	}
	return sess.Log.FlushFile(sess.LogPath)
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// LastAccessed returns when a session was last touched
func (m *Manager) LastAccessed(id string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return time.Time{}, ErrSessionNotFound
	}
	return session.LastAccessedAt, nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration. Their logs are flushed first when they have a log file.
// Callers running games concurrently must go through the game service, which
// serializes cleanup with commands.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if !session.LastAccessedAt.Before(cutoff) {
			continue
		}
		if session.LogPath != "" {
			if err := session.Log.FlushFile(session.LogPath); err != nil {
				logger.Log.WithError(err).WithField("session", session.ID).Warn("failed to flush expired session")
				continue
			}
		}
		session.Log.Destroy()
		delete(m.sessions, id)
		removed++
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
