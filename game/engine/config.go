package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TankSpec places a tank on the initial map.
type TankSpec struct {
	Row    int       `json:"row"`
	Col    int       `json:"col"`
	Facing Direction `json:"facing"`
}

// Pos returns the tank position.
func (t TankSpec) Pos() Position { return Position{Row: t.Row, Col: t.Col} }

// MirrorSpec places a mirror on the initial map.
type MirrorSpec struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Orientation Orientation `json:"orientation"`
}

// Pos returns the mirror position.
func (m MirrorSpec) Pos() Position { return Position{Row: m.Row, Col: m.Col} }

// MapConfig is the initial layout of a game.
type MapConfig struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Player      TankSpec     `json:"player"`
	Enemy       TankSpec     `json:"enemy"`
	Mirrors     []MirrorSpec `json:"mirrors,omitempty"`
}

// ValidateMapConfig checks that the layout fits the grid and that no two
// pieces share a cell.
func ValidateMapConfig(config *MapConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}
	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}

	inBounds := func(p Position) bool {
		return p.Row >= 0 && p.Row < config.Height && p.Col >= 0 && p.Col < config.Width
	}

	occupied := make(map[Position]string, len(config.Mirrors)+2)
	place := func(what string, p Position) error {
		if !inBounds(p) {
			return fmt.Errorf("config validation: %s at %s is outside the %dx%d grid", what, p, config.Height, config.Width)
		}
		if other, ok := occupied[p]; ok {
			return fmt.Errorf("config validation: %s at %s overlaps %s", what, p, other)
		}
		occupied[p] = what
		return nil
	}

	if config.Player.Facing > Right {
		return fmt.Errorf("config validation: player facing is invalid")
	}
	if config.Enemy.Facing > Right {
		return fmt.Errorf("config validation: enemy facing is invalid")
	}
	if err := place("player", config.Player.Pos()); err != nil {
		return err
	}
	if err := place("enemy", config.Enemy.Pos()); err != nil {
		return err
	}
	for i, m := range config.Mirrors {
		if m.Orientation > Backward {
			return fmt.Errorf("config validation: mirror %d orientation is invalid", i+1)
		}
		if err := place(fmt.Sprintf("mirror %d", i+1), m.Pos()); err != nil {
			return err
		}
	}
	return nil
}

// BuildGrid creates the grid and directory described by config. The config
// is assumed to be valid.
func BuildGrid(config *MapConfig) (*Grid, *Directory, error) {
	g, err := NewGrid(config.Height, config.Width)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range config.Mirrors {
		g.Set(m.Pos(), MirrorCell(m.Orientation))
	}
	d := NewDirectory(g,
		Entity{Pos: config.Player.Pos(), Facing: config.Player.Facing},
		Entity{Pos: config.Enemy.Pos(), Facing: config.Enemy.Facing},
	)
	return g, d, nil
}

// ParseMapText reads the plain map format:
//
//	height width
//	row col facing     (player, facing one of u/d/l/r)
//	row col facing     (enemy)
//	row col f|b        (zero or more mirrors)
//
// Lines starting with '#' and blank lines are ignored.
func ParseMapText(r io.Reader) (*MapConfig, error) {
	scanner := bufio.NewScanner(r)
	config := &MapConfig{}

	record := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch record {
		case 0:
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: expected \"height width\", got %q", lineNo, line)
			}
			h, err1 := strconv.Atoi(fields[0])
			w, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: invalid dimensions %q", lineNo, line)
			}
			config.Height, config.Width = h, w
		case 1, 2:
			tank, err := parseTankLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if record == 1 {
				config.Player = tank
			} else {
				config.Enemy = tank
			}
		default:
			m, err := parseMirrorLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			config.Mirrors = append(config.Mirrors, m)
		}
		record++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	if record < 3 {
		return nil, fmt.Errorf("map needs dimensions, a player and an enemy; got %d records", record)
	}
	return config, nil
}

func parseTankLine(fields []string) (TankSpec, error) {
	if len(fields) != 3 {
		return TankSpec{}, fmt.Errorf("expected \"row col facing\", got %d fields", len(fields))
	}
	row, col, err := parseCoords(fields)
	if err != nil {
		return TankSpec{}, err
	}
	dir, err := ParseDirection(fields[2])
	if err != nil {
		return TankSpec{}, err
	}
	return TankSpec{Row: row, Col: col, Facing: dir}, nil
}

func parseMirrorLine(fields []string) (MirrorSpec, error) {
	if len(fields) != 3 {
		return MirrorSpec{}, fmt.Errorf("expected \"row col orientation\", got %d fields", len(fields))
	}
	row, col, err := parseCoords(fields)
	if err != nil {
		return MirrorSpec{}, err
	}
	o, err := ParseOrientation(fields[2])
	if err != nil {
		return MirrorSpec{}, err
	}
	return MirrorSpec{Row: row, Col: col, Orientation: o}, nil
}

func parseCoords(fields []string) (int, int, error) {
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row %q", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column %q", fields[1])
	}
	return row, col, nil
}

// FormatMapText writes config in the plain map format read by ParseMapText.
func FormatMapText(w io.Writer, config *MapConfig) error {
	letter := func(d Direction) string { return d.String()[:1] }
	lines := []string{
		fmt.Sprintf("%d %d", config.Height, config.Width),
		fmt.Sprintf("%d %d %s", config.Player.Row, config.Player.Col, letter(config.Player.Facing)),
		fmt.Sprintf("%d %d %s", config.Enemy.Row, config.Enemy.Col, letter(config.Enemy.Facing)),
	}
	for _, m := range config.Mirrors {
		lines = append(lines, fmt.Sprintf("%d %d %s", m.Row, m.Col, m.Orientation.String()[:1]))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// LoadMapFile loads and validates a map from a .json file or a plain text map.
func LoadMapFile(path string) (*MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *MapConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		config = &MapConfig{}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse map '%s': %w", path, err)
		}
	} else {
		config, err = ParseMapText(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse map '%s': %w", path, err)
		}
	}

	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := ValidateMapConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultMap is the built-in duel used when no map directory is available.
func DefaultMap() *MapConfig {
	return &MapConfig{
		Name:        "duel",
		Description: "Two tanks, four mirrors",
		Height:      7,
		Width:       9,
		Player:      TankSpec{Row: 6, Col: 0, Facing: Up},
		Enemy:       TankSpec{Row: 0, Col: 8, Facing: Left},
		Mirrors: []MirrorSpec{
			{Row: 1, Col: 2, Orientation: Forward},
			{Row: 3, Col: 4, Orientation: Backward},
			{Row: 5, Col: 6, Orientation: Forward},
			{Row: 3, Col: 7, Orientation: Backward},
		},
	}
}
