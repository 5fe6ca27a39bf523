package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/game/service"
	"github.com/wricardo/lasertank/logger"
)

// Server exposes a GameService as MCP tools
type Server struct {
	service   service.GameService
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server backed by svc
func NewServer(svc service.GameService, version string) *Server {
	s := &Server{service: svc}
	s.initMCPServer(version)
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer(version string) {
	s.mcpServer = server.NewMCPServer(
		"Laser Tank",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Laser Tank - MCP Interface

GAME OBJECTIVE:
Destroy the enemy tank with your laser before it destroys you. Beams bounce off "/" and "\" mirrors.

AVAILABLE TOOLS:
- list_maps: List available maps
- new_game: Start a game on a map
- list_games: List running games
- game_state: Get the grid and both tanks
- command: Send one command (up/down/left/right/fire/save) - requires intent explanation
- history: Page through recorded grid snapshots
- save_log: Write the game's history to its log file
- end_game: Save the log and close the game
- describe_cell: Describe what occupies one cell
- game_instructions: Get the full rules

NOTE: The 'intent' parameter on the command tool serves as rubber duck debugging - explain your reasoning!`),
	)

	s.registerTools()
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by new_game",
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List available maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListMaps)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game on a map. The enemy may fire before your first command.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map": map[string]interface{}{
					"type":        "string",
					"description": "Map id from list_maps (optional)",
				},
			},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all running games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, both tanks and the outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"text", "json"},
					"description": "Output format (default text)",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Send one player command. A direction turns the tank when it faces elsewhere and moves it one cell when it already faces that way.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right", "fire", "save", "w", "s", "a", "d", "f", "l"},
					"description": "Command to apply",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this command (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"game_id", "command"},
		},
	}, s.handleCommand)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "history",
		Description: "Get recorded grid snapshots for a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Snapshots per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc)",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleHistory)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "save_log",
		Description: "Write the full history of a game to its log file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, s.handleSaveLog)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_game",
		Description: "Save the log of a game and close it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, s.handleEndGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies a cell: a tank, a mirror or nothing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top row is 0)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left column is 0)",
				},
			},
			Required: []string{"game_id", "row", "col"},
		},
	}, s.handleDescribeCell)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Plan the shortest winning command sequence from the current position. The game is not changed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, s.handleSolve)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects
func (s *Server) ServeStdio() error {
	logger.Log.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (s *Server) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maps, err := s.service.ListMaps(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Available Maps (%d):\n\n", len(maps)))
	for _, m := range maps {
		result.WriteString(fmt.Sprintf("- %s: %s (%dx%d, %d mirrors)", m.MapID, m.Name, m.Height, m.Width, m.Mirrors))
		if m.Description != "" {
			result.WriteString(" - " + m.Description)
		}
		result.WriteString("\n")
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mapName, _ := args["map"].(string)

	info, err := s.service.NewGame(ctx, mapName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created game: %s\nMap: %s\n\n%s", info.ID, info.MapID, formatGameState(info.State))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := s.service.ListGames(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Running Games (%d):\n\n", len(games))
	for _, g := range games {
		result += fmt.Sprintf("- %s (Map: %s, Turns: %d, Outcome: %s, Created: %s)\n",
			g.ID, g.MapID, g.State.Turns, g.State.Outcome, g.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	format, _ := args["format"].(string)

	state, err := s.service.State(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if format == "json" {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(formatGameState(state)), nil
}

func (s *Server) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	command, _ := args["command"].(string)
	intent, _ := args["intent"].(string)

	if intent != "" {
		logger.Log.WithField("game", gameID).WithField("command", command).Debugf("intent: %s", intent)
	}

	result, err := s.service.Command(ctx, gameID, command)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResult(result)), nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	opts := service.HistoryOptions{}
	opts.Page, _ = intArg(args, "page")
	opts.Limit, _ = intArg(args, "limit")
	opts.Order, _ = args["order"].(string)

	history, err := s.service.History(ctx, gameID, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(history)), nil
}

func (s *Server) handleSaveLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	path, err := s.service.SaveLog(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("History of game %s written to %s", gameID, path)), nil
}

func (s *Server) handleEndGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	if err := s.service.EndGame(ctx, gameID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Game %s ended", gameID)), nil
}

func (s *Server) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	state, err := s.service.State(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	grid, err := engine.GridFromRows(state.Grid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir := &engine.Directory{Player: state.Player, Enemy: state.Enemy}
	dir.Sync(grid)
	p := engine.Position{Row: row, Col: col}

	result := fmt.Sprintf("Cell %s: %s", p, engine.DescribeCell(grid, dir, p))
	if grid.InBounds(p) {
		result += fmt.Sprintf(" [%q]", string(grid.At(p)))
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	plan, err := s.service.Solve(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names := make([]string, len(plan.Steps))
	for i, step := range plan.Steps {
		names[i] = step.Command.String()
	}
	return mcp.NewToolResultText(fmt.Sprintf("Winning plan (%d commands, %d positions explored): %s",
		len(names), plan.Explored, strings.Join(names, ", "))), nil
}

func (s *Server) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Laser Tank - Complete Instructions

GAME OBJECTIVE:
Hit the enemy tank with your laser. If the enemy hits you first, you lose.

TURN ORDER:
1. At the start of every turn the enemy checks its line of sight. If you are in
   the same row or column and it faces you, it fires immediately. Mirrors and
   other cells between you do not block this check.
2. You then send one command.

COMMANDS:
- up/down/left/right (w/s/a/d): if your tank faces another way it turns in place;
  if it already faces that way it moves one cell. Moves into the border, a
  mirror or the enemy are refused and cost the turn.
- fire (f): shoot a beam in the direction you face.
- save (l): write the game history to its log file.

BEAMS:
- A beam travels one cell at a time in a straight line.
- "/" turns a beam going right upward, up to the right, left downward, down to the left.
- "\" turns a beam going right downward, down to the right, left upward, up to the left.
- A beam ends when it leaves the grid or strikes a tank.

GRID LEGEND:
- ^ v < > : tanks, pointing the way they face (the enemy uses the same glyphs)
- / \     : mirrors
- - |     : a beam in flight (only in history snapshots)
- *       : the border around the grid

STRATEGY:
- Use game_state before every command. Note which way the enemy faces.
- Never step into the enemy's row or column on the side it is facing.
- Use describe_cell to tell your tank from the enemy's.
- Stuck? solve shows a shortest winning sequence from where you stand.
- Plan bank shots: trace your beam through each mirror before firing.`

// Formatting helpers

func formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Turn: %d | Outcome: %s | Player: %s facing %s | Enemy: %s facing %s\n\n",
		state.Turns, state.Outcome,
		state.Player.Pos, state.Player.Facing,
		state.Enemy.Pos, state.Enemy.Facing))

	if grid, err := engine.GridFromRows(state.Grid); err == nil {
		result.WriteString(grid.String())
	} else {
		result.WriteString(strings.Join(state.Grid, "\n") + "\n")
	}

	if state.GameOver {
		result.WriteString("\nGAME OVER: " + state.Message)
	} else if state.EnemyHasShot {
		result.WriteString("\nWARNING: you are in the enemy's line of sight")
	}

	return result.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("Command: %s\n", result.Command))
	for _, ev := range result.Events {
		out.WriteString(fmt.Sprintf("- [%s] %s\n", ev.Type, ev.Message))
	}
	out.WriteString("\n")
	out.WriteString(formatGameState(result.GameState))
	return out.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Grid History (Page %d/%d) - Total snapshots: %d\n\n",
		history.Page, history.TotalPages, history.Total))

	for _, entry := range history.Entries {
		result.WriteString(fmt.Sprintf("#%d\n", entry.Index))
		if grid, err := engine.GridFromRows(entry.Rows); err == nil {
			result.WriteString(grid.String())
		}
		result.WriteString("\n")
	}

	return result.String()
}
