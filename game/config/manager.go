package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/service"
	"github.com/wricardo/lasertank/logger"
)

var (
	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map")
)

// DefaultMapName is tried first when picking the default map.
const DefaultMapName = "duel"

// mapExtensions are the file extensions recognised as maps, in lookup order.
var mapExtensions = []string{".json", ".map", ".txt"}

// Manager handles map loading and caching
type Manager struct {
	mapDir     string
	defaultMap *engine.MapConfig
	maps       map[string]*engine.MapConfig
	mu         sync.RWMutex
}

// NewManager creates a map manager over mapDir. An empty mapDir serves only
// the built-in map.
func NewManager(mapDir string) (*Manager, error) {
	if mapDir != "" {
		if _, err := os.Stat(mapDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("map directory does not exist: %s", mapDir)
		}
	}

	m := &Manager{
		mapDir: mapDir,
		maps:   make(map[string]*engine.MapConfig),
	}

	if err := m.loadDefaultMap(); err != nil {
		return nil, fmt.Errorf("failed to load default map: %w", err)
	}

	return m, nil
}

// Dir returns the directory maps are read from.
func (m *Manager) Dir() string {
	return m.mapDir
}

// LoadMap loads a map by name. The name may carry one of the map extensions.
func (m *Manager) LoadMap(name string) (*engine.MapConfig, error) {
	id := mapID(name)
	if id == "" {
		return m.GetDefault(), nil
	}

	m.mu.RLock()
	if config, exists := m.maps[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.maps[id]; exists {
		return config, nil
	}

	path, ok := m.findFile(name)
	if !ok {
		if id == DefaultMapName {
			config := engine.DefaultMap()
			m.maps[id] = config
			return config, nil
		}
		return nil, ErrMapNotFound
	}

	config, err := engine.LoadMapFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMap, filepath.Base(path), err)
	}

	m.maps[id] = config
	logger.Log.WithField("map", id).Debug("map loaded")
	return config, nil
}

// findFile resolves name to a file inside the map directory.
func (m *Manager) findFile(name string) (string, bool) {
	if m.mapDir == "" {
		return "", false
	}

	candidates := []string{name}
	if !hasMapExtension(name) {
		candidates = candidates[:0]
		for _, ext := range mapExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(m.mapDir, filepath.Base(candidate))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ListMaps returns information about every loadable map, sorted by id.
// Invalid map files are skipped.
func (m *Manager) ListMaps() ([]*service.MapInfo, error) {
	var maps []*service.MapInfo
	seen := make(map[string]bool)

	if m.mapDir != "" {
		entries, err := os.ReadDir(m.mapDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read map directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !hasMapExtension(entry.Name()) {
				continue
			}

			id := mapID(entry.Name())
			if seen[id] {
				continue
			}

			config, err := m.LoadMap(entry.Name())
			if err != nil {
				logger.Log.WithError(err).WithField("file", entry.Name()).Warn("skipping invalid map")
				continue
			}

			seen[id] = true
			maps = append(maps, newMapInfo(entry.Name(), id, config))
		}
	}

	if !seen[DefaultMapName] {
		maps = append(maps, newMapInfo("", DefaultMapName, engine.DefaultMap()))
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].MapID < maps[j].MapID })
	return maps, nil
}

func newMapInfo(filename, id string, config *engine.MapConfig) *service.MapInfo {
	return &service.MapInfo{
		Filename:    filename,
		MapID:       id,
		Name:        config.Name,
		Description: config.Description,
		Height:      config.Height,
		Width:       config.Width,
		Mirrors:     len(config.Mirrors),
	}
}

// GetDefault returns the default map
func (m *Manager) GetDefault() *engine.MapConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMap
}

// SetDefault sets the default map by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadMap(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMap = config
	return nil
}

// RefreshCache drops every cached map and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.maps = make(map[string]*engine.MapConfig)
	m.mu.Unlock()

	return m.loadDefaultMap()
}

// loadDefaultMap picks duel, then the first valid map in the directory, then
// the built-in duel.
func (m *Manager) loadDefaultMap() error {
	config, err := m.LoadMap(DefaultMapName)
	if err != nil {
		maps, listErr := m.ListMaps()
		if listErr != nil || len(maps) == 0 {
			config = engine.DefaultMap()
		} else if config, err = m.LoadMap(maps[0].MapID); err != nil {
			config = engine.DefaultMap()
		}
	}

	m.mu.Lock()
	m.defaultMap = config
	m.mu.Unlock()
	return nil
}

func hasMapExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range mapExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// mapID strips a known map extension from name.
func mapID(name string) string {
	if hasMapExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
