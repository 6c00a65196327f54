// Package engine provides the core game logic for the Knight's Tour Game.
//
// The engine package implements the tour rules including:
//   - Knight placement and knight-move legality on a square grid
//   - Visited-cell tracking and legal move computation
//   - Win and loss detection after every accepted move
//   - Run lifecycle (start, restart, exit) and the elapsed-time counter
//   - Preset loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the read-only snapshot handed to
// presentation layers, while GameConfig describes a board preset loaded from
// JSON or YAML files.
//
// Usage:
//
//	gameEngine := engine.NewEngineWithDefaults()
//
//	state, err := gameEngine.Start(5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Place the knight, then move it
//	state, _ = gameEngine.SelectCell(0, 0)
//	state, ok := gameEngine.SelectCell(1, 2)
//
// Game Rules:
//
// The first selected cell places the knight anywhere on the board. Every
// following selection must be an unvisited cell one knight move away. The
// run is won when every cell has been visited and lost when the knight has
// no unvisited cell left to jump to. Selections that break the rules are
// ignored and leave the state untouched.
package engine
