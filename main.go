// Command lasertank plays Laser Tank, a turn-based duel between the player's
// tank and a stationary enemy tank on a grid of mirrors.
//
// Subcommands:
//  1. "play": full-screen terminal game
//  2. "run": line-oriented game over stdin/stdout
//  3. "replay": prints a saved history log frame by frame
//  4. "validate": checks map files
//  5. "maps": lists the maps in the maps directory
//  6. "solve": finds a shortest winning command sequence and plays it
//  7. "mcp": serves the game as MCP tools over stdio
//
// Flags can also be set through the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/lasertank/game/config"
	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/history"
	"github.com/wricardo/lasertank/game/service"
	"github.com/wricardo/lasertank/game/session"
	"github.com/wricardo/lasertank/logger"
	"github.com/wricardo/lasertank/transport/console"
	"github.com/wricardo/lasertank/transport/mcp"
	"github.com/wricardo/lasertank/transport/terminal"
	"github.com/wricardo/lasertank/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Laser Tank"
)

// Exit statuses for a finished game.
const (
	exitWin = iota
	exitLoss
	exitQuit
	exitError
)

const (
	defaultMapsDir = "maps"
	defaultLogFile = "lasertank.log"
	defaultLogDir  = "logs"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).Warn("Error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	os.Exit(exitStatus(err))
}

// newApp builds the command tree. Exit codes are handled by main, not by cli.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "lasertank",
		Usage:   "turn-based laser duel on a grid of mirrors",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "maps-dir",
				Value:   defaultMapsDir,
				Usage:   "directory containing map files",
				Sources: cli.EnvVars("LASERTANK_MAPS_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log format (text or json)",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			playCommand(),
			runCommand(),
			replayCommand(),
			validateCommand(),
			mapsCommand(),
			solveCommand(),
			mcpCommand(),
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func gameFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log",
			Value:   defaultLogFile,
			Usage:   "file the game history is written to",
			Sources: cli.EnvVars("LASERTANK_LOG"),
		},
		&cli.DurationFlag{
			Name:    "frame-delay",
			Value:   engine.DefaultFrameDelayMillis * time.Millisecond,
			Usage:   "pause between beam animation frames",
			Sources: cli.EnvVars("LASERTANK_FRAME_DELAY"),
		},
	}
}

func setupLogging(cmd *cli.Command) {
	logger.Init(cmd.String("log-level"), cmd.String("log-format"), os.Stderr)
}

// mapManager opens the maps directory. A missing default directory falls
// back to the built-in map.
func mapManager(cmd *cli.Command) (*config.Manager, error) {
	dir := cmd.String("maps-dir")
	if _, err := os.Stat(dir); err != nil && !cmd.IsSet("maps-dir") {
		logger.Log.WithField("dir", dir).Debug("maps directory not found, using built-in map")
		dir = ""
	}
	return config.NewManager(dir)
}

func loadMap(cmd *cli.Command) (*engine.MapConfig, error) {
	maps, err := mapManager(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create map manager: %w", err)
	}
	return maps.LoadMap(cmd.Args().First())
}

// runGame plays one game to completion and writes the history to the log
// file, once on every save command and once more at the end.
func runGame(cmd *cli.Command, display engine.Display, src engine.CommandSource) (*engine.Game, error) {
	mapConfig, err := loadMap(cmd)
	if err != nil {
		return nil, err
	}

	logPath := cmd.String("log")
	hist := history.New()
	defer hist.Destroy()

	game, err := engine.NewGame(mapConfig, engine.Options{
		Recorder:  hist,
		Display:   display,
		Pacer:     engine.SleepPacer{Interval: cmd.Duration("frame-delay")},
		Persister: engine.PersisterFunc(func() error { return hist.FlushFile(logPath) }),
	})
	if err != nil {
		return nil, err
	}

	outcome, playErr := game.Play(src)

	if err := hist.FlushFile(logPath); err != nil {
		logger.Log.WithError(err).WithField("path", logPath).Error("Failed to write history")
		if playErr == nil {
			playErr = err
		}
	}
	logger.Log.WithFields(logrus.Fields{
		"outcome": outcome.String(),
		"turns":   game.Turns(),
		"frames":  hist.Len(),
	}).Info("game finished")
	return game, playErr
}

// outcomeExit turns a finished game into the process exit status.
func outcomeExit(outcome engine.Outcome) error {
	if code := outcomeStatus(outcome); code != exitWin {
		return cli.Exit("", code)
	}
	return nil
}

func outcomeStatus(outcome engine.Outcome) int {
	switch outcome {
	case engine.PlayerWin:
		return exitWin
	case engine.PlayerLoss:
		return exitLoss
	case engine.Quit:
		return exitQuit
	}
	return exitError
}

func exitStatus(err error) int {
	if err == nil {
		return exitWin
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	logger.Log.WithError(err).Error("lasertank failed")
	return exitError
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play in a full-screen terminal",
		ArgsUsage: "[map]",
		Flags:     gameFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)
			// The screen owns the terminal; log output would corrupt it.
			logger.Silence()

			screen, err := terminal.Open()
			if err != nil {
				return err
			}
			defer screen.Close()

			game, err := runGame(cmd, screen, screen)
			if err != nil {
				return err
			}

			if game.Outcome() != engine.Quit {
				screen.SetStatus(game.Outcome().Message() + " Press any key.")
				screen.Show(game.Grid())
				screen.WaitKey()
			}
			return outcomeExit(game.Outcome())
		},
	}
}

func runCommand() *cli.Command {
	flags := append(gameFlags(), &cli.BoolFlag{
		Name:  "no-clear",
		Usage: "do not clear the screen between frames",
	})
	return &cli.Command{
		Name:      "run",
		Usage:     "play over stdin and stdout",
		ArgsUsage: "[map]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)

			out, in := writer(cmd), reader(cmd)
			printer := console.NewPrinter(out, !cmd.Bool("no-clear"))

			game, err := runGame(cmd, printer, console.NewReader(in, out))
			if err != nil {
				return err
			}
			printer.Message(game.Outcome().Message())
			return outcomeExit(game.Outcome())
		},
	}
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "print a saved history log frame by frame",
		ArgsUsage: "<log>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "frame-delay",
				Value:   engine.DefaultFrameDelayMillis * time.Millisecond,
				Usage:   "pause between frames",
				Sources: cli.EnvVars("LASERTANK_FRAME_DELAY"),
			},
			&cli.BoolFlag{
				Name:  "no-clear",
				Usage: "do not clear the screen between frames",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("replay needs a log file")
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			grids, err := history.Parse(f)
			if err != nil {
				return err
			}

			printer := console.NewPrinter(writer(cmd), !cmd.Bool("no-clear"))
			pacer := engine.SleepPacer{Interval: cmd.Duration("frame-delay")}
			for i, g := range grids {
				if err := ctx.Err(); err != nil {
					return err
				}
				if i > 0 {
					pacer.Pause()
				}
				printer.Show(g)
			}
			printer.Message(fmt.Sprintf("Replayed %d snapshots", len(grids)))
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check map files",
		ArgsUsage: "<file>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)
			out := writer(cmd)

			files := cmd.Args().Slice()
			if len(files) == 0 {
				return fmt.Errorf("validate needs at least one map file")
			}

			invalid := 0
			for _, file := range files {
				result := validate.Map(file)
				if !result.Valid {
					invalid++
					fmt.Fprintf(out, "invalid  %s: %s\n", file, strings.Join(result.Errors, "; "))
					continue
				}
				m := result.Config
				fmt.Fprintf(out, "ok       %s: %s %dx%d, %d mirrors\n", file, m.Name, m.Height, m.Width, len(m.Mirrors))
				for _, warning := range result.Warnings {
					fmt.Fprintf(out, "         warning: %s\n", warning)
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d maps are invalid", invalid, len(files))
			}
			return nil
		},
	}
}

func mapsCommand() *cli.Command {
	return &cli.Command{
		Name:  "maps",
		Usage: "list available maps",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)
			maps, err := mapManager(cmd)
			if err != nil {
				return err
			}
			infos, err := maps.ListMaps()
			if err != nil {
				return err
			}

			out := writer(cmd)
			for _, info := range infos {
				fmt.Fprintf(out, "%-16s %3dx%-3d %2d mirrors  %s\n", info.MapID, info.Height, info.Width, info.Mirrors, info.Description)
			}
			return nil
		},
	}
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "find a shortest winning command sequence and play it",
		ArgsUsage: "[map]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "give up searching after this long",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)
			maps, err := mapManager(cmd)
			if err != nil {
				return fmt.Errorf("failed to create map manager: %w", err)
			}

			sessions := session.NewManagerWithOptions(session.Options{Pacer: engine.NoPause{}})
			gameService := service.NewGameService(sessions, maps)
			info, err := gameService.NewGame(ctx, cmd.Args().First())
			if err != nil {
				return err
			}

			searchCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()
			plan, err := gameService.Solve(searchCtx, info.ID)
			if err != nil {
				return err
			}

			out := writer(cmd)
			fmt.Fprintf(out, "Map %s: %d commands, %d positions explored\n", info.MapID, len(plan.Steps), plan.Explored)
			for i, step := range plan.Steps {
				result, err := gameService.Command(ctx, info.ID, step.Command.String())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%3d. %-5s %s facing %-5s %s\n", i+1, step.Command, step.Player.Pos, step.Player.Facing, result.Message)
			}

			state, err := gameService.State(ctx, info.ID)
			if err != nil {
				return err
			}
			if g, err := engine.GridFromRows(state.Grid); err == nil {
				console.NewPrinter(out, false).Show(g)
			}
			fmt.Fprintln(out, state.Message)
			return outcomeExit(state.Outcome)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "serve games as MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-dir",
				Value:   defaultLogDir,
				Usage:   "directory game history logs are written to (empty disables saving)",
				Sources: cli.EnvVars("LASERTANK_LOG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd)

			maps, err := mapManager(cmd)
			if err != nil {
				return fmt.Errorf("failed to create map manager: %w", err)
			}

			logDir := cmd.String("log-dir")
			if logDir != "" {
				if err := os.MkdirAll(logDir, 0755); err != nil {
					return fmt.Errorf("failed to create log directory: %w", err)
				}
			}

			sessions := session.NewManagerWithOptions(session.Options{
				LogDir: logDir,
				Pacer:  engine.NoPause{},
			})
			gameService := service.NewGameService(sessions, maps)
			go sessionCleanupRoutine(ctx, gameService)

			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := gameService.Shutdown(shutdownCtx); err != nil {
					logger.Log.WithError(err).Error("Failed to flush game logs")
				}
			}()

			logger.Log.WithFields(logrus.Fields{
				"version": Version,
				"maps":    maps.Dir(),
				"logs":    logDir,
			}).Info("MCP stdio server ready")
			return mcp.NewServer(gameService, Version).ServeStdio()
		},
	}
}

// sessionCleanupRoutine periodically removes games that have not been
// touched within a day. Their logs are flushed before removal.
func sessionCleanupRoutine(ctx context.Context, svc service.GameService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.CleanupExpired(ctx, 24*time.Hour)
		}
	}
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
