package engine

import "testing"

func TestInLineOfSight(t *testing.T) {
	tests := []struct {
		name     string
		player   Position
		enemy    Position
		facing   Direction
		expected bool
	}{
		{"same row, enemy facing right toward player", Position{2, 4}, Position{2, 1}, Right, true},
		{"same row, enemy facing left toward player", Position{2, 0}, Position{2, 4}, Left, true},
		{"same row, enemy facing away", Position{2, 0}, Position{2, 4}, Right, false},
		{"same column, enemy facing down toward player", Position{4, 1}, Position{0, 1}, Down, true},
		{"same column, enemy facing up toward player", Position{0, 1}, Position{3, 1}, Up, true},
		{"same column, enemy facing perpendicular", Position{0, 1}, Position{3, 1}, Left, false},
		{"not aligned", Position{0, 0}, Position{3, 1}, Up, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := InLineOfSight(test.player, test.enemy, test.facing); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestInLineOfSight_IgnoresObstacles(t *testing.T) {
	_, d := buildTestGrid(t, createTestMap(MirrorSpec{Row: 2, Col: 2, Orientation: Forward}))
	if !EnemyHasShot(d) {
		t.Error("Expected the enemy to have a shot through the mirror")
	}
}
