package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/lasertank/logger"
)

// Recorder stores snapshots of the grid in event order.
type Recorder interface {
	Append(g *Grid)
}

// Display draws the grid for the player. It never mutates g.
type Display interface {
	Show(g *Grid)
}

// Persister writes the recorded history to durable storage on request.
type Persister interface {
	Persist() error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func() error

func (f PersisterFunc) Persist() error { return f() }

// CommandSource supplies one command per turn. It returns ErrQuit when the
// player asks to leave.
type CommandSource interface {
	NextCommand() (Command, error)
}

// Options wires a Game to its collaborators. Every field is optional.
type Options struct {
	Recorder     Recorder
	Display      Display
	Pacer        Pacer
	Persister    Persister
	MaxBeamSteps int
}

// TurnReport describes what happened during one phase of a turn.
type TurnReport struct {
	Turn       int           `json:"turn"`
	Command    string        `json:"command,omitempty"`
	EnemyFired bool          `json:"enemy_fired"`
	EnemyBeam  *BeamResult   `json:"enemy_beam,omitempty"`
	Move       *MoveResult   `json:"move,omitempty"`
	PlayerBeam *BeamResult   `json:"player_beam,omitempty"`
	Saved      bool          `json:"saved,omitempty"`
	PersistErr error         `json:"-"`
	Outcome    Outcome       `json:"outcome"`
	Message    string        `json:"message"`
	Duration   time.Duration `json:"-"`
}

// Game runs the turn sequence: the enemy checks its line of sight and fires,
// then the player's command is applied and the grid is recorded.
type Game struct {
	ID string

	config  *MapConfig
	grid    *Grid
	dir     *Directory
	tracer  *Tracer
	opts    Options
	outcome Outcome
	turns   int
	log     *logrus.Entry
}

// NewGame builds a game from a map. The initial grid is recorded once.
func NewGame(config *MapConfig, opts Options) (*Game, error) {
	if err := ValidateMapConfig(config); err != nil {
		return nil, err
	}
	g, d, err := BuildGrid(config)
	if err != nil {
		return nil, err
	}

	game := &Game{
		ID:     uuid.NewString(),
		config: config,
		grid:   g,
		dir:    d,
		opts:   opts,
	}
	game.tracer = &Tracer{
		Sink:     FrameSinkFunc(game.frame),
		Pacer:    opts.Pacer,
		MaxSteps: opts.MaxBeamSteps,
	}
	game.log = logger.Log.WithFields(logrus.Fields{
		"game": game.ID,
		"map":  config.Name,
	})

	game.record()
	game.show()
	game.log.Debug("game created")
	return game, nil
}

// Config returns the map the game was built from.
func (g *Game) Config() *MapConfig { return g.config }

// Grid returns the live grid. Callers must not mutate it.
func (g *Game) Grid() *Grid { return g.grid }

// Directory returns the live tank directory. Callers must not mutate it.
func (g *Game) Directory() *Directory { return g.dir }

// Outcome returns the current termination state.
func (g *Game) Outcome() Outcome { return g.outcome }

// Turns returns the number of player commands applied so far.
func (g *Game) Turns() int { return g.turns }

// Quit ends a running game at the player's request.
func (g *Game) Quit() {
	if g.outcome == Running {
		g.outcome = Quit
		g.log.Info("game quit")
	}
}

// frame records an intermediate beam frame, then displays it.
func (g *Game) frame(grid *Grid) {
	if g.opts.Recorder != nil {
		g.opts.Recorder.Append(grid)
	}
	if g.opts.Display != nil {
		g.opts.Display.Show(grid)
	}
}

func (g *Game) record() {
	if g.opts.Recorder != nil {
		g.opts.Recorder.Append(g.grid)
	}
}

func (g *Game) show() {
	if g.opts.Display != nil {
		g.opts.Display.Show(g.grid)
	}
}

// BeginTurn runs the enemy phase: if the player is in the enemy's line of
// sight, the enemy fires. It must run before the player's command is read.
func (g *Game) BeginTurn() (*TurnReport, error) {
	if g.outcome.Over() {
		return nil, ErrGameOver
	}
	report := &TurnReport{Turn: g.turns + 1}

	if EnemyHasShot(g.dir) {
		report.EnemyFired = true
		beam, err := g.tracer.Fire(g.grid, g.dir, Enemy)
		report.EnemyBeam = beam
		if err != nil {
			g.log.WithError(err).Error("enemy beam did not terminate")
			return report, err
		}
		g.log.WithFields(logrus.Fields{
			"turn":   report.Turn,
			"role":   Enemy.String(),
			"state":  beam.State.String(),
			"frames": beam.Frames,
		}).Debug("enemy fired")
		if beam.Hit {
			g.finish(PlayerLoss)
			g.show()
		}
	}

	report.Outcome = g.outcome
	report.Message = g.outcome.Message()
	return report, nil
}

// Apply runs the player phase for cmd and then records the grid, even when
// the command changed nothing.
func (g *Game) Apply(cmd Command) (*TurnReport, error) {
	if g.outcome.Over() {
		return nil, ErrGameOver
	}
	start := time.Now()
	g.turns++
	report := &TurnReport{Turn: g.turns, Command: cmd.String()}
	entry := g.log.WithFields(logrus.Fields{"turn": g.turns, "role": Player.String(), "command": cmd.String()})

	if dir, ok := cmd.Direction(); ok {
		move := MoveOrTurn(g.grid, g.dir, Player, dir)
		report.Move = &move
		entry.WithFields(logrus.Fields{"action": move.Action.String(), "reason": move.Reason.String()}).Debug("player moved")
	} else {
		switch cmd {
		case CommandFire:
			beam, err := g.tracer.Fire(g.grid, g.dir, Player)
			report.PlayerBeam = beam
			if err != nil {
				entry.WithError(err).Error("player beam did not terminate")
				return report, err
			}
			entry.WithFields(logrus.Fields{"state": beam.State.String(), "frames": beam.Frames}).Debug("player fired")
			if beam.Hit {
				g.finish(PlayerWin)
			}
		case CommandSave:
			if g.opts.Persister != nil {
				if err := g.opts.Persister.Persist(); err != nil {
					report.PersistErr = err
					entry.WithError(err).Warn("failed to save history")
				} else {
					report.Saved = true
					entry.Info("history saved")
				}
			}
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, cmd)
		}
	}

	g.record()
	g.show()

	report.Outcome = g.outcome
	report.Message = g.outcome.Message()
	report.Duration = time.Since(start)
	return report, nil
}

// Turn runs a whole turn: the enemy phase, then cmd unless the enemy already
// ended the game. The returned report merges both phases.
func (g *Game) Turn(cmd Command) (*TurnReport, error) {
	enemy, err := g.BeginTurn()
	if err != nil {
		return enemy, err
	}
	if enemy.Outcome.Over() {
		return enemy, nil
	}

	player, err := g.Apply(cmd)
	if player == nil {
		return enemy, err
	}
	player.EnemyFired = enemy.EnemyFired
	player.EnemyBeam = enemy.EnemyBeam
	return player, err
}

// Play runs turns with commands from src until the game ends. A source
// returning ErrQuit ends the game with Outcome Quit.
func (g *Game) Play(src CommandSource) (Outcome, error) {
	for !g.outcome.Over() {
		report, err := g.BeginTurn()
		if err != nil {
			return g.outcome, err
		}
		if report.Outcome.Over() {
			break
		}

		cmd, err := src.NextCommand()
		if errors.Is(err, ErrQuit) {
			g.Quit()
			break
		}
		if err != nil {
			return g.outcome, fmt.Errorf("failed to read command: %w", err)
		}

		if _, err := g.Apply(cmd); err != nil {
			return g.outcome, err
		}
	}
	return g.outcome, nil
}

func (g *Game) finish(o Outcome) {
	g.outcome = o
	g.log.WithField("turn", g.turns).Info(o.Message())
}

// EnemyHasShot reports whether the enemy will fire at the start of the next turn.
func (g *Game) EnemyHasShot() bool {
	return EnemyHasShot(g.dir)
}
