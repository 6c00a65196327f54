package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/knights-tour-game/game/engine"
	"github.com/wricardo/knights-tour-game/game/service"
)

// Version reported to MCP clients
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Knight's Tour Game",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Knight's Tour Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Visit every square of an NxN board exactly once with a chess knight.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions / get_session: Inspect sessions
- start_game: Start a run on an NxN board (3..10)
- select_cell: Place the knight, then move it by knight jumps
- game_state: Board, legal moves, visited count and timer
- exit_game / restart_game: Abandon or restart the run
- move_history: View past moves
- list_configs: List board presets
- game_instructions: Full rules

Rows and columns are 0-based. The run is lost as soon as the knight has no
unvisited square to jump to.`),
	)

	c.registerTools()
}

func sessionTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	}, opts...)
	return mcp.NewTool(name, opts...)
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session with optional preset selection"),
		mcp.WithString("config_id", mcp.Description("Preset id from list_configs (optional, default classic)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session"), c.handleGetSession)

	// Run lifecycle
	c.mcpServer.AddTool(sessionTool("game_state", "Get the current board, legal moves, visited count and elapsed time"),
		c.handleGameState)

	c.mcpServer.AddTool(sessionTool("start_game", "Start a new run. Any run in progress is discarded.",
		mcp.WithNumber("size", mcp.Description("Board size N for an NxN grid, 3 to 10 (optional, defaults to the preset size)")),
	), c.handleStartGame)

	c.mcpServer.AddTool(sessionTool("select_cell",
		"Select a cell. The first selection places the knight on any square; later selections must be a knight jump to an unvisited square.",
		mcp.WithNumber("row", mcp.Required(), mcp.Description("0-based row")),
		mcp.WithNumber("col", mcp.Required(), mcp.Description("0-based column")),
		mcp.WithString("intent", mcp.Description("Brief explanation of why this square (optional)")),
	), c.handleSelectCell)

	c.mcpServer.AddTool(sessionTool("exit_game", "Abandon the current run and return to the setup state"), c.handleExitGame)

	c.mcpServer.AddTool(sessionTool("restart_game", "Start a fresh run with the same board size"), c.handleRestartGame)

	c.mcpServer.AddTool(sessionTool("move_history", "Get the moves of the current run",
		mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
		mcp.WithNumber("limit", mcp.Description("Moves per page (default 20, max 100)")),
		mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Sort order (default desc)")),
	), c.handleMoveHistory)

	// Presets
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available board presets"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get the rules of the game and a strategy hint"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to the MCP endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	if response == nil {
		// Notifications have no response
		w.WriteHeader(http.StatusAccepted)
		return
	}
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// ServeStdio runs the MCP server over stdin/stdout until stdin closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID := request.GetString("config_id", "")

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	size := 0
	if session.GameConfig != nil {
		size = session.GameConfig.GridSize
	}
	result := fmt.Sprintf("Created session: %s\nConfig: %s (%dx%d)\nNext: start_game with session_id %s.\n",
		session.ID, session.ConfigName, size, size, session.ID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "unknown"
		if s.GameState != nil {
			status = string(s.GameState.Status)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateCall(ctx, request, "GET", "/state", nil)
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]int{}
	if size := request.GetInt("size", 0); size != 0 {
		body["size"] = size
	}
	return c.stateCall(ctx, request, "POST", "/start", body)
}

func (c *Client) handleExitGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateCall(ctx, request, "POST", "/exit", nil)
}

func (c *Client) handleRestartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateCall(ctx, request, "POST", "/restart", nil)
}

// stateCall runs a session endpoint that answers with a GameState
func (c *Client) stateCall(ctx context.Context, request mcp.CallToolRequest, method, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, method, sessionPath(sessionID, suffix), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if intent := request.GetString("intent", ""); intent != "" {
		log.Debug().Str("session", sessionID).Int("row", row).Int("col", col).Str("intent", intent).Msg("mcp select")
	}

	var result service.MoveResult
	body := map[string]int{"row": row, "col": col}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		query.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, cfg := range configs {
		tour := "full tour possible"
		if !cfg.TourPossible {
			tour = "no full tour exists"
		}
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %s)\n  %s\n", cfg.ConfigID, cfg.Name, cfg.GridSize, cfg.GridSize, tour, cfg.Description)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`KNIGHT'S TOUR - RULES

OBJECTIVE
Move a chess knight so that it visits every square of an NxN board exactly
once. Board sizes range from %d to %d.

FLOW
1. create_session (optionally with a preset from list_configs)
2. start_game with a size; the clock starts at 00:00
3. select_cell anywhere to place the knight; that square is visited
4. select_cell again to jump: two squares in one direction and one square
   perpendicular (an L shape). The target must be unvisited.
5. The run ends:
   - WON when all N*N squares are visited
   - LOST when the knight has no unvisited square to jump to
6. restart_game for a new run of the same size, or exit_game

REJECTED SELECTIONS
A rejected selection changes nothing. select_cell reports the reason:
- not_in_progress: no run is active
- out_of_bounds: the square is off the board
- visited: the square was already visited
- not_knight_move: the square is not a knight jump away

BOARD LEGEND
  N  knight
  #  visited
  *  legal next square
  .  empty

Coordinates are (row, col), 0-based, row 0 at the top.

FEASIBILITY
Full tours exist for every N >= 5. On 3x3 and 4x4 every run ends
LOST. On 3x3 the centre square has no knight moves at all.

STRATEGY
Warnsdorff's rule works well: always jump to the legal square that has the
fewest onward moves. Corners are the easiest squares to strand, so visit
them early.`, engine.MinGridSize, engine.MaxGridSize)

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(session.GameState))
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", statusLabel(state.Status))
	if state.Status == engine.NotStarted {
		fmt.Fprintf(&b, "Board: %dx%d (use start_game to begin)\n", state.Size, state.Size)
		return b.String()
	}

	fmt.Fprintf(&b, "Board: %dx%d  Visited: %d/%d  Time: %s\n",
		state.Size, state.Size, state.VisitedCount, state.TotalCells, engine.FormatElapsed(state.ElapsedSeconds))
	if state.KnightPos != nil {
		fmt.Fprintf(&b, "Knight: (%d,%d)\n", state.KnightPos.Row, state.KnightPos.Col)
	} else {
		b.WriteString("Knight: not placed (select any square)\n")
	}

	b.WriteString("\n")
	b.WriteString(formatBoard(state))
	b.WriteString("\n")

	if state.Status == engine.InProgress {
		fmt.Fprintf(&b, "Legal moves (%d): %s\n", len(state.LegalMoves), formatPositions(state.LegalMoves, 16))
	}

	if state.TerminationMessage != "" {
		fmt.Fprintf(&b, "\n%s\n", state.TerminationMessage)
	} else if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	return b.String()
}

// formatBoard renders the grid with column and row indices
func formatBoard(state *engine.GameState) string {
	legal := make(map[engine.Position]bool, len(state.LegalMoves))
	if state.Status == engine.InProgress {
		for _, pos := range state.LegalMoves {
			legal[pos] = true
		}
	}

	var b strings.Builder
	b.WriteString("   ")
	for col := 0; col < state.Size; col++ {
		fmt.Fprintf(&b, " %d", col)
	}
	b.WriteString("\n")

	for row := 0; row < state.Size; row++ {
		fmt.Fprintf(&b, "%2d ", row)
		for col := 0; col < state.Size; col++ {
			b.WriteString(" ")
			b.WriteString(cellChar(state, legal, row, col))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellChar(state *engine.GameState, legal map[engine.Position]bool, row, col int) string {
	pos := engine.Position{Row: row, Col: col}
	switch {
	case state.KnightPos != nil && *state.KnightPos == pos:
		return "N"
	case row < len(state.Grid) && col < len(state.Grid[row]) && state.Grid[row][col] == engine.Visited:
		return "#"
	case legal[pos]:
		return "*"
	default:
		return "."
	}
}

func statusLabel(status engine.RunStatus) string {
	switch status {
	case engine.NotStarted:
		return "NOT STARTED"
	case engine.InProgress:
		return "IN PROGRESS"
	case engine.Won:
		return "WON"
	case engine.Lost:
		return "LOST"
	}
	return string(status)
}

// formatPositions lists up to limit positions as (row,col)
func formatPositions(positions []engine.Position, limit int) string {
	if len(positions) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(positions))
	for i, pos := range positions {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... %d more", len(positions)-limit))
			break
		}
		parts = append(parts, fmt.Sprintf("(%d,%d)", pos.Row, pos.Col))
	}
	return strings.Join(parts, " ")
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	if result.Accepted {
		if step := result.Step; step != nil {
			if step.From == nil {
				fmt.Fprintf(&b, "✅ Knight placed at (%d,%d)\n", step.To.Row, step.To.Col)
			} else {
				fmt.Fprintf(&b, "✅ Move %d: (%d,%d) -> (%d,%d)\n",
					step.MoveNumber, step.From.Row, step.From.Col, step.To.Row, step.To.Col)
			}
		} else {
			b.WriteString("✅ Accepted\n")
		}
	} else {
		b.WriteString("❌ Rejected")
		if a := result.AttemptedTo; a != nil {
			fmt.Fprintf(&b, " (%d,%d): %s", a.Row, a.Col, a.Reason)
		}
		b.WriteString("\n")
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	for _, event := range result.Events {
		if event.Type == service.EventWon || event.Type == service.EventLost {
			fmt.Fprintf(&b, "🏁 %s\n", strings.ToUpper(event.Type))
		}
	}

	if result.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(result.GameState))
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d of %d, %d moves total):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("No moves yet.\n")
		return b.String()
	}

	for _, move := range history.Moves {
		if move.From == nil {
			fmt.Fprintf(&b, "%3d. [%s] placed at (%d,%d)\n",
				move.MoveNumber, engine.FormatElapsed(move.ElapsedSeconds), move.To.Row, move.To.Col)
			continue
		}
		fmt.Fprintf(&b, "%3d. [%s] (%d,%d) -> (%d,%d)\n",
			move.MoveNumber, engine.FormatElapsed(move.ElapsedSeconds),
			move.From.Row, move.From.Col, move.To.Row, move.To.Col)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d.\n", history.Page+1)
	}
	return b.String()
}
