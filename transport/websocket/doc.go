// Package websocket provides WebSocket transport for the Knight's Tour game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Push of every new game snapshot, including clock ticks
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Only the hub's Run loop touches the client map;
// registration, broadcasts and queries reach it through channels. Each
// client connection has a read pump and a write pump goroutine.
//
// Message Protocol:
//
// Clients only receive. Every message is one JSON frame:
//
//	{"session_id": "ab12", "event": "moved", "game_state": {...}}
//
// Events are state (sent once on connect), started, placed, moved, won,
// lost, exited, restarted, tick and session_deleted.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(sessions, configs, service.WithObserver(hub))
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
//	})
//
// The hub implements service.StateObserver. BroadcastToSession never blocks,
// since the game service calls it while holding its lock.
package websocket
