package engine

import "testing"

// createTestMap returns the 5x5 duel used across the engine tests: player on
// the left edge facing right, enemy on the right edge facing left.
func createTestMap(mirrors ...MirrorSpec) *MapConfig {
	return &MapConfig{
		Name:        "Test Map",
		Description: "Map for engine tests",
		Height:      5,
		Width:       5,
		Player:      TankSpec{Row: 2, Col: 0, Facing: Right},
		Enemy:       TankSpec{Row: 2, Col: 4, Facing: Left},
		Mirrors:     mirrors,
	}
}

func buildTestGrid(t *testing.T, config *MapConfig) (*Grid, *Directory) {
	t.Helper()
	if err := ValidateMapConfig(config); err != nil {
		t.Fatalf("invalid test map: %v", err)
	}
	g, d, err := BuildGrid(config)
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	return g, d
}

// frameRecorder keeps a copy of every frame handed to it.
type frameRecorder struct {
	frames []*Grid
}

func (r *frameRecorder) Frame(g *Grid) {
	r.frames = append(r.frames, g.Snapshot())
}

func (r *frameRecorder) Append(g *Grid) {
	r.frames = append(r.frames, g.Snapshot())
}

type countingPacer struct {
	pauses int
}

func (p *countingPacer) Pause() { p.pauses++ }

func expectViolation(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s: expected a contract violation panic", name)
			return
		}
		if _, ok := r.(*ContractViolation); !ok {
			t.Errorf("%s: expected *ContractViolation, got %T (%v)", name, r, r)
		}
	}()
	fn()
}
