package engine

import (
	"errors"
	"testing"
)

func TestReflect(t *testing.T) {
	tests := []struct {
		orientation Orientation
		in          Direction
		expected    Direction
	}{
		{Forward, Down, Left},
		{Forward, Up, Right},
		{Forward, Right, Up},
		{Forward, Left, Down},
		{Backward, Down, Right},
		{Backward, Up, Left},
		{Backward, Right, Down},
		{Backward, Left, Up},
	}

	for _, test := range tests {
		t.Run(test.orientation.String()+"/"+test.in.String(), func(t *testing.T) {
			if got := Reflect(test.orientation, test.in); got != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, got)
			}
		})
	}

	expectViolation(t, "Reflect invalid orientation", func() { Reflect(Orientation(7), Up) })
}

func TestFire_StraightHit(t *testing.T) {
	g, d := buildTestGrid(t, createTestMap())
	before := g.Snapshot()

	frames := &frameRecorder{}
	pacer := &countingPacer{}
	tracer := &Tracer{Sink: frames, Pacer: pacer}

	result, err := tracer.Fire(g, d, Player)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Hit || result.State != HitEntity || result.Target != Enemy {
		t.Fatalf("Expected player beam to hit the enemy, got %+v", result)
	}
	if result.Frames != 3 || len(frames.frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d (sink saw %d)", result.Frames, len(frames.frames))
	}
	if pacer.pauses != 3 {
		t.Errorf("Expected 3 pauses, got %d", pacer.pauses)
	}

	for i, frame := range frames.frames {
		beamAt := Position{Row: 2, Col: i + 1}
		if frame.At(beamAt) != BeamHorizontal {
			t.Errorf("Frame %d: expected '-' at %s, got %q", i, beamAt, frame.At(beamAt))
		}
		if frame.Count(ClassBeam) != 1 {
			t.Errorf("Frame %d: expected exactly one beam glyph, got %d", i, frame.Count(ClassBeam))
		}
	}

	if !g.Equal(before) {
		t.Error("Expected the grid to be restored after the beam")
	}
}

func TestFire_MirrorReflectsOut(t *testing.T) {
	g, d := buildTestGrid(t, createTestMap(MirrorSpec{Row: 2, Col: 2, Orientation: Forward}))

	frames := &frameRecorder{}
	result, err := (&Tracer{Sink: frames}).Fire(g, d, Player)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Hit {
		t.Fatal("Expected the beam to miss")
	}
	if result.State != OutOfBounds {
		t.Errorf("Expected out_of_bounds, got %s", result.State)
	}
	if result.Reflections != 1 {
		t.Errorf("Expected 1 reflection, got %d", result.Reflections)
	}

	expected := []struct {
		pos  Position
		cell Cell
	}{
		{Position{2, 1}, BeamHorizontal},
		{Position{1, 2}, BeamVertical},
		{Position{0, 2}, BeamVertical},
	}
	if len(frames.frames) != len(expected) {
		t.Fatalf("Expected %d frames, got %d", len(expected), len(frames.frames))
	}
	for i, frame := range frames.frames {
		if frame.At(expected[i].pos) != expected[i].cell {
			t.Errorf("Frame %d: expected %q at %s, got %q", i, expected[i].cell, expected[i].pos, frame.At(expected[i].pos))
		}
		if frame.At(Position{2, 2}) != MirrorForward {
			t.Errorf("Frame %d: mirror cell was overwritten with %q", i, frame.At(Position{2, 2}))
		}
	}

	if g.Count(ClassBeam) != 0 {
		t.Error("Expected no beam glyph left on the grid")
	}
}

func TestFire_OutOfBoundsImmediately(t *testing.T) {
	config := createTestMap()
	config.Player.Facing = Left
	g, d := buildTestGrid(t, config)

	frames := &frameRecorder{}
	result, err := (&Tracer{Sink: frames}).Fire(g, d, Player)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.State != OutOfBounds || result.Frames != 0 || len(frames.frames) != 0 {
		t.Errorf("Expected an immediate out_of_bounds with no frames, got %+v", result)
	}
}

func TestFire_EnemyBeamHitsPlayer(t *testing.T) {
	g, d := buildTestGrid(t, createTestMap())

	result, err := (&Tracer{}).Fire(g, d, Enemy)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Hit || result.Target != Player {
		t.Errorf("Expected enemy beam to hit the player, got %+v", result)
	}
}

// cycleMap surrounds the firer with four mirrors so its beam loops back
// through its own cell forever.
func cycleMap() *MapConfig {
	return &MapConfig{
		Name:   "loop",
		Height: 3,
		Width:  3,
		Player: TankSpec{Row: 0, Col: 1, Facing: Right},
		Enemy:  TankSpec{Row: 1, Col: 1, Facing: Down},
		Mirrors: []MirrorSpec{
			{Row: 0, Col: 2, Orientation: Backward},
			{Row: 2, Col: 2, Orientation: Forward},
			{Row: 2, Col: 0, Orientation: Backward},
			{Row: 0, Col: 0, Orientation: Forward},
		},
	}
}

func TestFire_CycleIsReported(t *testing.T) {
	g, d := buildTestGrid(t, cycleMap())
	before := g.Snapshot()

	result, err := (&Tracer{}).Fire(g, d, Player)
	if !errors.Is(err, ErrBeamCycle) {
		t.Fatalf("Expected ErrBeamCycle, got %v", err)
	}
	if result == nil || result.Hit {
		t.Errorf("Expected a non-hitting partial result, got %+v", result)
	}
	if !g.Equal(before) {
		t.Error("Expected the grid to be restored after the aborted beam")
	}
	if g.At(Position{0, 1}) != TankRight {
		t.Errorf("Expected the firer glyph intact, got %q", g.At(Position{0, 1}))
	}
}

func TestFire_MaxStepsOverride(t *testing.T) {
	g, d := buildTestGrid(t, createTestMap())

	_, err := (&Tracer{MaxSteps: 2}).Fire(g, d, Player)
	if !errors.Is(err, ErrBeamCycle) {
		t.Errorf("Expected ErrBeamCycle with a 2 step limit, got %v", err)
	}
}

func TestDryRun_LeavesGridUntouched(t *testing.T) {
	g, d := buildTestGrid(t, createTestMap())
	before := g.Snapshot()
	dirBefore := *d

	result, err := DryRun(g, d, Player)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Hit {
		t.Error("Expected the dry run to report a hit")
	}
	if !g.Equal(before) || *d != dirBefore {
		t.Error("Expected DryRun to leave the grid and directory untouched")
	}
}
