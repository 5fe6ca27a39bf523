package engine

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateMapConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *MapConfig)
		wantErr string
	}{
		{"valid", func(c *MapConfig) {}, ""},
		{"zero height", func(c *MapConfig) { c.Height = 0 }, "height"},
		{"too wide", func(c *MapConfig) { c.Width = MaxGridSize + 1 }, "width"},
		{"player outside", func(c *MapConfig) { c.Player.Row = 5 }, "player"},
		{"enemy on player", func(c *MapConfig) { c.Enemy = TankSpec{Row: 2, Col: 0, Facing: Up} }, "overlaps"},
		{"mirror on enemy", func(c *MapConfig) {
			c.Mirrors = []MirrorSpec{{Row: 2, Col: 4, Orientation: Forward}}
		}, "overlaps"},
		{"invalid facing", func(c *MapConfig) { c.Enemy.Facing = Direction(9) }, "facing"},
		{"invalid orientation", func(c *MapConfig) {
			c.Mirrors = []MirrorSpec{{Row: 0, Col: 0, Orientation: Orientation(4)}}
		}, "orientation"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createTestMap()
			test.mutate(config)
			err := ValidateMapConfig(config)
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}

	if err := ValidateMapConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestBuildGrid(t *testing.T) {
	g, d := buildTestGrid(t, createTestMap(MirrorSpec{Row: 0, Col: 3, Orientation: Backward}))

	if g.At(Position{2, 0}) != TankRight || g.At(Position{2, 4}) != TankLeft {
		t.Error("Expected both tanks projected onto the grid")
	}
	if g.At(Position{0, 3}) != MirrorBackward {
		t.Errorf("Expected backward mirror at (0,3), got %q", g.At(Position{0, 3}))
	}
	if d.Player.Role != Player || d.Enemy.Role != Enemy {
		t.Error("Expected directory roles to be assigned")
	}
}

func TestParseMapText(t *testing.T) {
	input := `# a small duel
5 5
2 0 r
2 4 l

2 2 f
0 1 b
`
	config, err := ParseMapText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse map: %v", err)
	}
	if config.Height != 5 || config.Width != 5 {
		t.Errorf("Expected 5x5, got %dx%d", config.Height, config.Width)
	}
	if config.Player != (TankSpec{Row: 2, Col: 0, Facing: Right}) {
		t.Errorf("Unexpected player %+v", config.Player)
	}
	if config.Enemy != (TankSpec{Row: 2, Col: 4, Facing: Left}) {
		t.Errorf("Unexpected enemy %+v", config.Enemy)
	}
	if len(config.Mirrors) != 2 || config.Mirrors[1].Orientation != Backward {
		t.Errorf("Unexpected mirrors %+v", config.Mirrors)
	}
}

func TestParseMapText_Errors(t *testing.T) {
	tests := map[string]string{
		"missing enemy":   "3 3\n0 0 u\n",
		"bad dimensions":  "3 x\n0 0 u\n1 1 d\n",
		"bad facing":      "3 3\n0 0 north\n1 1 d\n",
		"bad orientation": "3 3\n0 0 u\n1 1 d\n2 2 x\n",
		"extra fields":    "3 3\n0 0 u 1\n1 1 d\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseMapText(strings.NewReader(input)); err == nil {
				t.Error("Expected parse error")
			}
		})
	}
}

func TestFormatMapText_RoundTrip(t *testing.T) {
	original := DefaultMap()

	var buf bytes.Buffer
	if err := FormatMapText(&buf, original); err != nil {
		t.Fatalf("Failed to format map: %v", err)
	}
	parsed, err := ParseMapText(&buf)
	if err != nil {
		t.Fatalf("Failed to parse formatted map: %v", err)
	}

	if parsed.Height != original.Height || parsed.Width != original.Width ||
		parsed.Player != original.Player || parsed.Enemy != original.Enemy {
		t.Errorf("Round trip changed the layout: %+v", parsed)
	}
	if len(parsed.Mirrors) != len(original.Mirrors) {
		t.Fatalf("Expected %d mirrors, got %d", len(original.Mirrors), len(parsed.Mirrors))
	}
	for i := range parsed.Mirrors {
		if parsed.Mirrors[i] != original.Mirrors[i] {
			t.Errorf("Mirror %d: expected %+v, got %+v", i, original.Mirrors[i], parsed.Mirrors[i])
		}
	}
}

func TestLoadMapFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "arena.json")
	data, err := json.Marshal(createTestMap())
	if err != nil {
		t.Fatalf("Failed to marshal map: %v", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}

	config, err := LoadMapFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to load JSON map: %v", err)
	}
	if config.Name != "Test Map" || config.Player.Facing != Right {
		t.Errorf("Unexpected JSON map %+v", config)
	}

	textPath := filepath.Join(dir, "corridor.map")
	if err := os.WriteFile(textPath, []byte("1 4\n0 0 r\n0 3 l\n"), 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}
	config, err = LoadMapFile(textPath)
	if err != nil {
		t.Fatalf("Failed to load text map: %v", err)
	}
	if config.Name != "corridor" {
		t.Errorf("Expected name from file name, got %q", config.Name)
	}

	badPath := filepath.Join(dir, "bad.map")
	if err := os.WriteFile(badPath, []byte("2 2\n0 0 r\n0 0 l\n"), 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}
	if _, err := LoadMapFile(badPath); err == nil {
		t.Error("Expected validation error for overlapping tanks")
	}

	if _, err := LoadMapFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestMapConfig_JSONEnums(t *testing.T) {
	data, err := json.Marshal(createTestMap(MirrorSpec{Row: 0, Col: 0, Orientation: Backward}))
	if err != nil {
		t.Fatalf("Failed to marshal map: %v", err)
	}
	for _, want := range []string{`"facing":"right"`, `"facing":"left"`, `"orientation":"backward"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %s in %s", want, data)
		}
	}
}

func TestDefaultMap_IsValid(t *testing.T) {
	if err := ValidateMapConfig(DefaultMap()); err != nil {
		t.Errorf("Default map is invalid: %v", err)
	}
}
