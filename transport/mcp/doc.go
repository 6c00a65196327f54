// Package mcp exposes the Knight's Tour game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API and the JSON answer is rendered as text. Tools:
//   - create_session, list_sessions, get_session
//   - start_game, select_cell, exit_game, restart_game
//   - game_state, move_history
//   - list_configs, game_instructions
//
// Boards are drawn with N for the knight, # for visited squares, * for legal
// next squares and . for empty ones, with 0-based row and column indices.
//
// Transport Modes:
//   - Stdio: Client.ServeStdio for local MCP clients
//   - HTTP: Client implements http.Handler for single JSON-RPC messages
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	http.Handle("/mcp", client)
//	// or
//	client.ServeStdio()
package mcp
