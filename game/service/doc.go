// Package service provides the business logic layer for the Knight's Tour game.
//
// The service package implements:
//   - Multi-session game management
//   - Run lifecycle: start, select, exit, restart
//   - Run clocks, released on win, loss, exit, restart and deletion
//   - Move history tracking and pagination
//   - Board preset access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board preset loading and validation.
// StateObserver receives every new snapshot, including clock ticks.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. The engine is not safe for concurrent use, so the service
// holds one lock for the whole of every engine call. Clock ticks go through
// the same lock and carry the run id they were started for; a tick for a run
// that has since been restarted or exited is ignored.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithObserver(hub))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.Start(ctx, info.ID, 5)
//	result, err := gameService.SelectCell(ctx, info.ID, 0, 0)
package service
