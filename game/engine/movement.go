package engine

import "fmt"

// MoveAction is what a directional command ended up doing.
type MoveAction uint8

const (
	Turned MoveAction = iota
	Stepped
	Blocked
)

func (a MoveAction) String() string {
	switch a {
	case Turned:
		return "turned"
	case Stepped:
		return "stepped"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// BlockReason explains why a step was refused.
type BlockReason uint8

const (
	NotBlocked BlockReason = iota
	BlockedByBoundary
	BlockedByMirror
	BlockedByTank
)

func (b BlockReason) String() string {
	switch b {
	case NotBlocked:
		return "none"
	case BlockedByBoundary:
		return "boundary"
	case BlockedByMirror:
		return "mirror"
	case BlockedByTank:
		return "tank"
	}
	return fmt.Sprintf("reason(%d)", uint8(b))
}

// MoveResult describes the effect of one MoveOrTurn call.
type MoveResult struct {
	Role   Role        `json:"role"`
	Action MoveAction  `json:"action"`
	Reason BlockReason `json:"reason,omitempty"`
	From   Position    `json:"from"`
	To     Position    `json:"to"`
	Facing Direction   `json:"facing"`
}

// CanStep reports whether the tank with role who could step one cell toward
// dir, and if not, why.
func CanStep(g *Grid, d *Directory, who Role, dir Direction) (Position, BlockReason) {
	e := d.Get(who)
	target := e.Pos.Step(dir)

	if !g.InBounds(target) {
		return target, BlockedByBoundary
	}
	if g.ClassAt(target) == ClassMirror {
		return target, BlockedByMirror
	}
	if target == d.Other(who).Pos {
		return target, BlockedByTank
	}
	return target, NotBlocked
}

// MoveOrTurn applies a directional command with face-then-step semantics:
// a tank not facing dir turns in place; a tank already facing dir steps one
// cell if the target is in bounds, not a mirror and not the other tank.
// A single call never both turns and moves.
func MoveOrTurn(g *Grid, d *Directory, who Role, dir Direction) MoveResult {
	e := d.Get(who)
	if !g.InBounds(e.Pos) {
		violate("MoveOrTurn", "%s at %s outside %dx%d grid", who, e.Pos, g.Height(), g.Width())
	}

	result := MoveResult{Role: who, From: e.Pos, To: e.Pos}

	if e.Facing != dir {
		e.Facing = dir
		g.Set(e.Pos, TankCell(dir))
		result.Action = Turned
		result.Facing = dir
		return result
	}

	result.Facing = e.Facing
	target, reason := CanStep(g, d, who, dir)
	if reason != NotBlocked {
		result.Action = Blocked
		result.Reason = reason
		return result
	}

	g.Set(target, g.At(e.Pos))
	g.Set(e.Pos, Empty)
	e.Pos = target

	result.Action = Stepped
	result.To = target
	return result
}

func (a MoveAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (b BlockReason) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
