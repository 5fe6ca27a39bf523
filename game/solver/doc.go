// Package solver finds a shortest winning command sequence for a map.
//
// The search runs every candidate command through a real engine turn, so a
// plan it returns wins when played from the same position with the same
// rules: the enemy fires first whenever it has line of sight, a directional
// command turns before it steps, and the beam reflects off every mirror.
//
// Typical use:
//
//	plan, err := solver.Solve(ctx, mapConfig)
//	if errors.Is(err, solver.ErrNoPlan) {
//	    // the enemy cannot be hit from any reachable cell
//	}
//	for _, cmd := range plan.Commands() {
//	    game.Turn(cmd)
//	}
package solver
