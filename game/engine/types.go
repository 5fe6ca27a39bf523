package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the four grid directions a tank can face or a beam can travel.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Orientation is the diagonal a mirror lies along.
type Orientation uint8

const (
	Forward  Orientation = iota // "/"
	Backward                    // "\"
)

// Role identifies one of the two tanks on the grid.
type Role uint8

const (
	Player Role = iota
	Enemy
)

// Outcome is the termination reason of a game. Running means not terminated yet.
type Outcome uint8

const (
	Running Outcome = iota
	PlayerWin
	PlayerLoss
	Quit
)

// Command is one player input from the closed command set.
type Command uint8

const (
	CommandUp Command = iota
	CommandDown
	CommandLeft
	CommandRight
	CommandFire
	CommandSave
)

// Validation constants
const (
	MinGridSize = 1
	MaxGridSize = 256
	MaxCells    = MaxGridSize * MaxGridSize

	// DefaultFrameDelayMillis is the pause between beam animation frames.
	DefaultFrameDelayMillis = 500
)

var (
	ErrAllocation     = errors.New("grid allocation failed")
	ErrBeamCycle      = errors.New("beam exceeded step limit (mirror cycle)")
	ErrUnknownCommand = errors.New("unknown command")
	ErrQuit           = errors.New("quit requested")
	ErrGameOver       = errors.New("game is over")
)

// ContractViolation is the panic value raised when an engine invariant is broken
// by its caller, e.g. an unknown cell symbol reaching a decoder.
type ContractViolation struct {
	Op     string
	Detail string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", c.Op, c.Detail)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// Position is a (row, column) grid coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Step returns the adjacent position one cell toward d.
func (p Position) Step(d Direction) Position {
	switch d {
	case Up:
		return Position{p.Row - 1, p.Col}
	case Down:
		return Position{p.Row + 1, p.Col}
	case Left:
		return Position{p.Row, p.Col - 1}
	case Right:
		return Position{p.Row, p.Col + 1}
	}
	violate("Position.Step", "invalid direction %d", d)
	return p
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Horizontal reports whether d travels along a row.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// ParseDirection accepts "up", "down", "left", "right" or the single letters u/d/l/r.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if d > Right {
		return nil, fmt.Errorf("invalid direction %d", d)
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (o Orientation) String() string {
	switch o {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return fmt.Sprintf("orientation(%d)", uint8(o))
}

// ParseOrientation accepts "forward", "backward", "/", "\" or the letters f/b.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "f", "/":
		return Forward, nil
	case "backward", "b", "\\":
		return Backward, nil
	}
	return 0, fmt.Errorf("invalid mirror orientation %q", s)
}

func (o Orientation) MarshalText() ([]byte, error) {
	if o > Backward {
		return nil, fmt.Errorf("invalid orientation %d", o)
	}
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	v, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (r Role) String() string {
	if r == Enemy {
		return "enemy"
	}
	return "player"
}

// Other returns the opposing role.
func (r Role) Other() Role {
	if r == Player {
		return Enemy
	}
	return Player
}

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case PlayerWin:
		return "player_win"
	case PlayerLoss:
		return "player_loss"
	case Quit:
		return "quit"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// Over reports whether the outcome ends the game.
func (o Outcome) Over() bool {
	return o != Running
}

// Message is the line shown to the player when the game ends.
func (o Outcome) Message() string {
	switch o {
	case PlayerWin:
		return "You win!"
	case PlayerLoss:
		return "You lose!"
	case Quit:
		return "Game abandoned."
	}
	return ""
}

func (c Command) String() string {
	switch c {
	case CommandUp:
		return "up"
	case CommandDown:
		return "down"
	case CommandLeft:
		return "left"
	case CommandRight:
		return "right"
	case CommandFire:
		return "fire"
	case CommandSave:
		return "save"
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

// Direction returns the direction a movement command points to.
func (c Command) Direction() (Direction, bool) {
	switch c {
	case CommandUp:
		return Up, true
	case CommandDown:
		return Down, true
	case CommandLeft:
		return Left, true
	case CommandRight:
		return Right, true
	}
	return 0, false
}

// ParseCommand maps menu keys (w/s/a/d/f/l) and command names to a Command.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "up":
		return CommandUp, nil
	case "s", "down":
		return CommandDown, nil
	case "a", "left":
		return CommandLeft, nil
	case "d", "right":
		return CommandRight, nil
	case "f", "fire":
		return CommandFire, nil
	case "l", "save", "log":
		return CommandSave, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*r = Player
	case "enemy":
		*r = Enemy
	default:
		return fmt.Errorf("invalid role %q", text)
	}
	return nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for _, v := range []Outcome{Running, PlayerWin, PlayerLoss, Quit} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("invalid outcome %q", text)
}
