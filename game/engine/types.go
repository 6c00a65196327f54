package engine

import "errors"

// CellStatus represents the state of a single grid cell
type CellStatus string

const (
	Empty   CellStatus = "empty"
	Visited CellStatus = "visited"
)

// RunStatus represents where the current run is in its lifecycle
type RunStatus string

const (
	NotStarted RunStatus = "not_started"
	InProgress RunStatus = "in_progress"
	Won        RunStatus = "won"
	Lost       RunStatus = "lost"

	// Validation constants
	MinGridSize     = 3
	MaxGridSize     = 10
	DefaultGridSize = 5
)

// ErrInvalidConfiguration is returned when a grid size or preset is outside the supported range
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Position represents row,col coordinates on the grid
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// GameConfig represents a board preset loaded from JSON or YAML
type GameConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	GridSize    int    `json:"grid_size" yaml:"grid_size"`
	Messages    struct {
		Welcome  string `json:"welcome" yaml:"welcome"`
		Placed   string `json:"placed" yaml:"placed"`
		Moved    string `json:"moved" yaml:"moved"`
		CantMove string `json:"cant_move" yaml:"cant_move"`
		Victory  string `json:"victory" yaml:"victory"`
		Stuck    string `json:"stuck" yaml:"stuck"`
	} `json:"messages" yaml:"messages"`
}

// GameState represents the complete snapshot of a run
type GameState struct {
	RunID              string             `json:"run_id,omitempty"`
	Size               int                `json:"size"`
	Grid               [][]CellStatus     `json:"grid"`
	KnightPos          *Position          `json:"knight_pos"`
	LegalMoves         []Position         `json:"legal_moves"`
	VisitedCount       int                `json:"visited_count"`
	TotalCells         int                `json:"total_cells"`
	Status             RunStatus          `json:"status"`
	ElapsedSeconds     int                `json:"elapsed_seconds"`
	Message            string             `json:"message"`
	TerminationMessage string             `json:"termination_message,omitempty"`
	ConfigName         string             `json:"config_name"`
	MoveHistory        []MoveHistoryEntry `json:"move_history"`
}

// MoveHistoryEntry represents a single accepted placement or move
type MoveHistoryEntry struct {
	MoveNumber     int       `json:"move_number"`
	From           *Position `json:"from,omitempty"` // nil for the initial placement
	To             Position  `json:"to"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Timestamp      int64     `json:"timestamp"`
}

// IsGameOver reports whether the run has ended in a win or a loss
func (gs *GameState) IsGameOver() bool {
	return gs.Status == Won || gs.Status == Lost
}

// Clone returns a deep copy of the state
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}

	clone := *gs
	clone.Grid = make([][]CellStatus, len(gs.Grid))
	for i, row := range gs.Grid {
		clone.Grid[i] = append([]CellStatus(nil), row...)
	}
	if gs.KnightPos != nil {
		pos := *gs.KnightPos
		clone.KnightPos = &pos
	}
	clone.LegalMoves = append([]Position{}, gs.LegalMoves...)
	clone.MoveHistory = make([]MoveHistoryEntry, len(gs.MoveHistory))
	for i, entry := range gs.MoveHistory {
		if entry.From != nil {
			from := *entry.From
			entry.From = &from
		}
		clone.MoveHistory[i] = entry
	}
	return &clone
}
