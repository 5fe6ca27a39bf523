package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/logger"
)

var ErrNoPlan = errors.New("no winning plan")

// candidates are tried in this order at every state, so a shot is preferred
// over a move when both finish at the same depth.
var candidates = []engine.Command{
	engine.CommandFire,
	engine.CommandUp,
	engine.CommandDown,
	engine.CommandLeft,
	engine.CommandRight,
}

// Step is one planned command and where it leaves the player's tank.
type Step struct {
	Command engine.Command `json:"command"`
	Player  engine.Entity  `json:"player"`
}

// Plan is a shortest command sequence that wins the map.
type Plan struct {
	Map      string `json:"map"`
	Steps    []Step `json:"steps"`
	Explored int    `json:"explored"`
}

// Commands returns the planned commands in order.
func (p *Plan) Commands() []engine.Command {
	cmds := make([]engine.Command, len(p.Steps))
	for i, s := range p.Steps {
		cmds[i] = s.Command
	}
	return cmds
}

type node struct {
	player engine.Entity
	parent int
	cmd    engine.Command
}

// Solve searches breadth-first over the player's position and facing. The
// enemy never moves and the mirrors never change, so the player's tank is the
// whole game state. Every transition is a real engine turn: the enemy fires
// first when it has line of sight, then the command is applied.
func Solve(ctx context.Context, config *engine.MapConfig) (*Plan, error) {
	if err := engine.ValidateMapConfig(config); err != nil {
		return nil, err
	}

	start := engine.Entity{Role: engine.Player, Pos: config.Player.Pos(), Facing: config.Player.Facing}
	nodes := []node{{player: start, parent: -1}}
	seen := map[engine.Entity]bool{start: true}
	log := logger.Log.WithField("map", config.Name)

	for i := 0; i < len(nodes); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, cmd := range candidates {
			next, outcome, err := simulate(config, nodes[i].player, cmd)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"pos":     nodes[i].player.Pos.String(),
					"command": cmd.String(),
				}).Debug("skipping transition")
				continue
			}

			switch outcome {
			case engine.PlayerWin:
				plan := buildPlan(config.Name, nodes, i, Step{Command: cmd, Player: next})
				plan.Explored = len(nodes)
				log.WithFields(logrus.Fields{
					"steps":    len(plan.Steps),
					"explored": plan.Explored,
				}).Debug("plan found")
				return plan, nil
			case engine.Running:
				if !seen[next] {
					seen[next] = true
					nodes = append(nodes, node{player: next, parent: i, cmd: cmd})
				}
			}
		}
	}
	return nil, fmt.Errorf("%w for map %q after %d states", ErrNoPlan, config.Name, len(nodes))
}

// simulate plays one turn of a fresh game with the player placed as given.
func simulate(config *engine.MapConfig, player engine.Entity, cmd engine.Command) (engine.Entity, engine.Outcome, error) {
	trial := *config
	trial.Player = engine.TankSpec{Row: player.Pos.Row, Col: player.Pos.Col, Facing: player.Facing}

	game, err := engine.NewGame(&trial, engine.Options{})
	if err != nil {
		return player, engine.Running, err
	}
	if _, err := game.Turn(cmd); err != nil {
		return player, game.Outcome(), err
	}
	return game.Directory().Player, game.Outcome(), nil
}

func buildPlan(name string, nodes []node, leaf int, last Step) *Plan {
	steps := []Step{last}
	for i := leaf; nodes[i].parent >= 0; i = nodes[i].parent {
		steps = append(steps, Step{Command: nodes[i].cmd, Player: nodes[i].player})
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	return &Plan{Map: name, Steps: steps}
}
