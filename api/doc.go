// Package api provides the HTTP REST API for the Knight's Tour game.
//
// The api package implements:
//   - Session endpoints
//   - Run lifecycle endpoints (start, select, exit, restart)
//   - Board preset listing and creation
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session, body {"config_id": "classic"}
//   - GET /api/sessions - List sessions (sort=accessed|created, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and stop its clock
//
// Runs:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/start - Start a run, body {"size": 5}; without size the preset size is used
//   - POST /api/sessions/{id}/select - Place or move the knight, body {"row": 0, "col": 0}
//   - POST /api/sessions/{id}/exit - Abandon the run
//   - POST /api/sessions/{id}/restart - New run with the same size
//   - GET /api/sessions/{id}/history - Paginated moves (page, limit, order)
//
// Presets:
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get a preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?session={id} - WebSocket stream of snapshots
//
// Rejected selections are not errors: select answers 200 with
// "accepted": false and an "attempted_to" reason of not_in_progress,
// out_of_bounds, visited or not_knight_move.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session zz: session not found"}
//
// An out-of-range size or an invalid preset answers 400, an unknown session
// or preset 404, anything else 500.
package api
