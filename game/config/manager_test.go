package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/lasertank/game/engine"
)

func createValidMap() *engine.MapConfig {
	return &engine.MapConfig{
		Name:        "Test Map",
		Description: "Test map",
		Height:      5,
		Width:       5,
		Player:      engine.TankSpec{Row: 4, Col: 0, Facing: engine.Up},
		Enemy:       engine.TankSpec{Row: 0, Col: 4, Facing: engine.Left},
		Mirrors: []engine.MirrorSpec{
			{Row: 2, Col: 2, Orientation: engine.Forward},
		},
	}
}

func writeMapFile(t *testing.T, dir, name string, config *engine.MapConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal map: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}
}

func writeTextMap(t *testing.T, dir, filename, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeMapFile(t, dir, "duel", createValidMap())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Test Map" {
			t.Errorf("Expected duel.json as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without map files, got error: %v", err)
		}
		if manager.GetDefault() == nil || manager.GetDefault().Name != DefaultMapName {
			t.Errorf("Expected the built-in duel as default, got %+v", manager.GetDefault())
		}
	})

	t.Run("no directory", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if _, err := manager.LoadMap(DefaultMapName); err != nil {
			t.Errorf("Expected built-in map, got %v", err)
		}
	})
}

func TestManager_LoadMap(t *testing.T) {
	dir := t.TempDir()
	writeMapFile(t, dir, "arena", createValidMap())
	writeTextMap(t, dir, "corridor.map", "1 5\n0 0 r\n0 4 l\n")
	writeTextMap(t, dir, "broken.map", "2 2\n0 0 r\n0 0 l\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load json map", func(t *testing.T) {
		config, err := manager.LoadMap("arena")
		if err != nil {
			t.Fatalf("Failed to load map: %v", err)
		}
		if config.Name != "Test Map" {
			t.Errorf("Expected map name 'Test Map', got '%s'", config.Name)
		}
	})

	t.Run("load with extension", func(t *testing.T) {
		config, err := manager.LoadMap("arena.json")
		if err != nil {
			t.Fatalf("Failed to load map with extension: %v", err)
		}
		if len(config.Mirrors) != 1 {
			t.Errorf("Expected 1 mirror, got %d", len(config.Mirrors))
		}
	})

	t.Run("load text map", func(t *testing.T) {
		config, err := manager.LoadMap("corridor")
		if err != nil {
			t.Fatalf("Failed to load map: %v", err)
		}
		if config.Name != "corridor" || config.Width != 5 {
			t.Errorf("Unexpected map %+v", config)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadMap("arena")
		second, err := manager.LoadMap("arena")
		if err != nil {
			t.Fatalf("Failed to load map from cache: %v", err)
		}
		if first != second {
			t.Error("Expected map to be loaded from cache")
		}
	})

	t.Run("load non-existent map", func(t *testing.T) {
		if _, err := manager.LoadMap("non-existent"); !errors.Is(err, ErrMapNotFound) {
			t.Errorf("Expected ErrMapNotFound, got %v", err)
		}
	})

	t.Run("load invalid map", func(t *testing.T) {
		if _, err := manager.LoadMap("broken"); !errors.Is(err, ErrInvalidMap) {
			t.Errorf("Expected ErrInvalidMap, got %v", err)
		}
	})

	t.Run("path traversal stays in directory", func(t *testing.T) {
		if _, err := manager.LoadMap("../arena"); err != nil {
			t.Errorf("Expected base name lookup inside the map directory, got %v", err)
		}
	})

	t.Run("empty name returns default", func(t *testing.T) {
		config, err := manager.LoadMap("")
		if err != nil || config != manager.GetDefault() {
			t.Errorf("Expected default map, got %v (%v)", config, err)
		}
	})
}

func TestManager_ListMaps(t *testing.T) {
	dir := t.TempDir()
	writeMapFile(t, dir, "arena", createValidMap())
	writeTextMap(t, dir, "corridor.map", "1 5\n0 0 r\n0 4 l\n")
	writeTextMap(t, dir, "broken.map", "nonsense\n")
	writeTextMap(t, dir, "README.md", "not a map\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	maps, err := manager.ListMaps()
	if err != nil {
		t.Fatalf("Failed to list maps: %v", err)
	}

	ids := make([]string, 0, len(maps))
	for _, m := range maps {
		ids = append(ids, m.MapID)
	}
	expected := []string{"arena", "corridor", "duel"}
	if len(ids) != len(expected) {
		t.Fatalf("Expected maps %v, got %v", expected, ids)
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("Expected maps %v, got %v", expected, ids)
			break
		}
	}

	if maps[0].Filename != "arena.json" || maps[0].Mirrors != 1 || maps[0].Height != 5 {
		t.Errorf("Unexpected map info %+v", maps[0])
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeTextMap(t, dir, "corridor.map", "1 5\n0 0 r\n0 4 l\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("corridor"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Name != "corridor" {
		t.Errorf("Expected corridor as default, got %q", manager.GetDefault().Name)
	}

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("Expected ErrMapNotFound, got %v", err)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	original := createValidMap()
	writeMapFile(t, dir, "arena", original)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := manager.LoadMap("arena"); err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}

	updated := createValidMap()
	updated.Name = "Updated"
	writeMapFile(t, dir, "arena", updated)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}
	config, err := manager.LoadMap("arena")
	if err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}
	if config.Name != "Updated" {
		t.Errorf("Expected refreshed map, got %q", config.Name)
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeMapFile(t, dir, "arena", createValidMap())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*engine.MapConfig, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = manager.LoadMap("arena")
		}(i)
	}
	wg.Wait()

	for i, config := range results {
		if config != results[0] {
			t.Errorf("Load %d returned a different map instance", i)
		}
	}
}
