package service

import (
	"time"

	"github.com/wricardo/knights-tour-game/game/engine"
)

// Event types emitted by the service
const (
	EventStarted   = "started"
	EventPlaced    = "placed"
	EventMoved     = "moved"
	EventWon       = "won"
	EventLost      = "lost"
	EventExited    = "exited"
	EventRestarted = "restarted"
	EventTick      = "tick"
)

// Rejection reasons reported in AttemptInfo
const (
	ReasonNotInProgress = "not_in_progress"
	ReasonOutOfBounds   = "out_of_bounds"
	ReasonVisited       = "visited"
	ReasonNotKnightMove = "not_knight_move"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a cell selection
type MoveResult struct {
	Accepted    bool              `json:"accepted"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// StepInfo is a compact record of an accepted selection
type StepInfo struct {
	MoveNumber   int              `json:"move_number"`
	From         *engine.Position `json:"from,omitempty"`
	To           engine.Position  `json:"to"`
	VisitedCount int              `json:"visited_count"`
	LegalMoves   int              `json:"legal_moves"`
	Won          bool             `json:"won,omitempty"`
	Lost         bool             `json:"lost,omitempty"`
}

// AttemptInfo details a rejected selection
type AttemptInfo struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Reason string `json:"reason"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a board preset
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	GridSize     int    `json:"grid_size"`
	TourPossible bool   `json:"tour_possible"`
}
