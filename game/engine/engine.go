package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Run lifecycle
	Start(size int) (*GameState, error)
	Restart() *GameState
	Exit() *GameState
	Tick() *GameState

	// Game state
	GetState() *GameState
	GetStatus() RunStatus
	IsGameOver() bool
	IsVictory() bool
	GetSize() int
	GetRunID() string
	GetKnightPosition() *Position

	// Movement operations
	SelectCell(row, col int) (*GameState, bool)
	CanSelect(row, col int) bool
	GetLegalMoves() []Position

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialise access.
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new game engine with the provided preset. The engine
// starts in the not-started state with the preset's grid size selected.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameState(config.GridSize, config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in classic preset
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config: config,
		state:  InitGameState(config.GridSize, config),
	}
}

// Start begins a fresh run on a size x size board. An out-of-range size
// returns ErrInvalidConfiguration and leaves the current state intact.
func (e *GameEngine) Start(size int) (*GameState, error) {
	if err := ValidateGridSize(size); err != nil {
		return e.GetState(), err
	}

	state := InitGameState(size, e.config)
	state.RunID = uuid.NewString()
	state.Status = InProgress
	state.Message = e.config.Messages.Welcome
	state.LegalMoves = state.ComputeLegalMoves()
	e.state = state

	return e.GetState(), nil
}

// Restart is Start with the current grid size
func (e *GameEngine) Restart() *GameState {
	state, err := e.Start(e.state.Size)
	if err != nil {
		// Size was validated when it was selected; fall back to the preset size
		state, _ = e.Start(e.config.GridSize)
	}
	return state
}

// Exit abandons the run and returns to the pre-game state, keeping the grid size
func (e *GameEngine) Exit() *GameState {
	e.state = InitGameState(e.state.Size, e.config)
	return e.GetState()
}

// Tick advances the elapsed time by one second while the run is in progress
func (e *GameEngine) Tick() *GameState {
	if e.state.Status == InProgress {
		e.state.ElapsedSeconds++
	}
	return e.GetState()
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state.Clone()
}

// SetState replaces the game state (used by tests and tooling)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := ValidateGridSize(state.Size); err != nil {
		return err
	}
	e.state = state.Clone()
	return nil
}

// GetStatus returns the run status
func (e *GameEngine) GetStatus() RunStatus {
	return e.state.Status
}

// IsGameOver returns whether the run has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver()
}

// IsVictory returns whether the player has completed the tour
func (e *GameEngine) IsVictory() bool {
	return e.state.Status == Won
}

// GetSize returns the selected grid size
func (e *GameEngine) GetSize() int {
	return e.state.Size
}

// GetRunID returns the id of the current run, empty when not started
func (e *GameEngine) GetRunID() string {
	return e.state.RunID
}

// GetKnightPosition returns the knight position, or nil before placement
func (e *GameEngine) GetKnightPosition() *Position {
	if e.state.KnightPos == nil {
		return nil
	}
	pos := *e.state.KnightPos
	return &pos
}

// SelectCell places or moves the knight. The boolean reports whether the
// selection was accepted; rejected selections return an unchanged snapshot.
func (e *GameEngine) SelectCell(row, col int) (*GameState, bool) {
	accepted := e.state.SelectCell(row, col, e.config)
	return e.GetState(), accepted
}

// CanSelect checks whether SelectCell(row, col) would be accepted
func (e *GameEngine) CanSelect(row, col int) bool {
	if e.state.Status != InProgress || !e.state.IsEmpty(row, col) {
		return false
	}
	return e.state.IsLegalMove(row, col)
}

// GetLegalMoves returns the current legal move set
func (e *GameEngine) GetLegalMoves() []Position {
	return append([]Position{}, e.state.LegalMoves...)
}

// GetConfig returns the current preset
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new preset and returns to the pre-game state with its grid size
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameState(config.GridSize, config)
	return nil
}

// GetMoveHistory returns the accepted moves of the current run
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.GetState().MoveHistory
}

// GetLastMove returns the last accepted move, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	history := e.GetMoveHistory()
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}
