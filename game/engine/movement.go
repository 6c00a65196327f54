package engine

import (
	"fmt"
	"time"
)

// knightOffsets lists the eight knight jumps as (row, col) deltas
var knightOffsets = [8]struct{ dr, dc int }{
	{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
	{1, -2}, {1, 2}, {2, -1}, {2, 1},
}

// InBounds reports whether row,col lies on the grid
func (gs *GameState) InBounds(row, col int) bool {
	return row >= 0 && row < gs.Size && col >= 0 && col < gs.Size
}

// IsEmpty reports whether row,col lies on the grid and has not been visited
func (gs *GameState) IsEmpty(row, col int) bool {
	return gs.InBounds(row, col) && gs.Grid[row][col] == Empty
}

// KnightMoves returns the unvisited cells one knight jump away from pos
func (gs *GameState) KnightMoves(pos Position) []Position {
	moves := []Position{}
	for _, off := range knightOffsets {
		row, col := pos.Row+off.dr, pos.Col+off.dc
		if gs.IsEmpty(row, col) {
			moves = append(moves, Position{Row: row, Col: col})
		}
	}
	return moves
}

// ComputeLegalMoves returns every empty cell before the knight is placed,
// and the knight's reachable empty cells afterwards
func (gs *GameState) ComputeLegalMoves() []Position {
	if gs.KnightPos == nil {
		moves := []Position{}
		for row := 0; row < gs.Size; row++ {
			for col := 0; col < gs.Size; col++ {
				if gs.Grid[row][col] == Empty {
					moves = append(moves, Position{Row: row, Col: col})
				}
			}
		}
		return moves
	}
	return gs.KnightMoves(*gs.KnightPos)
}

// IsLegalMove reports whether row,col is in the current legal move set
func (gs *GameState) IsLegalMove(row, col int) bool {
	for _, move := range gs.LegalMoves {
		if move.Row == row && move.Col == col {
			return true
		}
	}
	return false
}

// SelectCell applies a placement or knight move. It returns false and leaves
// the state untouched when the selection is not allowed. A nil config uses
// DefaultConfig.
func (gs *GameState) SelectCell(row, col int, config *GameConfig) bool {
	if config == nil {
		config = DefaultConfig()
	}
	if gs.Status != InProgress {
		return false
	}
	if !gs.IsEmpty(row, col) {
		return false
	}
	// Movement phase only accepts cells from the current legal set
	if gs.KnightPos != nil && !gs.IsLegalMove(row, col) {
		return false
	}

	from := gs.KnightPos
	gs.Grid[row][col] = Visited
	gs.KnightPos = &Position{Row: row, Col: col}
	gs.VisitedCount++
	gs.addMoveToHistory(from, *gs.KnightPos)

	if from == nil {
		gs.Message = formatIfSet(config.Messages.Placed, row, col)
	} else {
		gs.Message = formatIfSet(config.Messages.Moved, gs.VisitedCount, gs.TotalCells)
	}

	gs.LegalMoves = gs.ComputeLegalMoves()
	gs.evaluateTermination(config)
	return true
}

// evaluateTermination marks the run won or lost. Win is checked first so a
// final move that fills the board is never reported as a loss.
func (gs *GameState) evaluateTermination(config *GameConfig) {
	total := gs.Size * gs.Size

	if gs.VisitedCount > 0 && gs.VisitedCount == total {
		gs.Status = Won
		gs.TerminationMessage = fmt.Sprintf(config.Messages.Victory,
			gs.VisitedCount, gs.ElapsedSeconds, gs.Size, gs.Size)
		gs.Message = gs.TerminationMessage
		return
	}

	if gs.KnightPos != nil && len(gs.LegalMoves) == 0 && gs.VisitedCount > 0 && gs.VisitedCount < total {
		gs.Status = Lost
		gs.TerminationMessage = fmt.Sprintf(config.Messages.Stuck, gs.VisitedCount, total)
		gs.Message = gs.TerminationMessage
	}
}

// addMoveToHistory records an accepted placement or move
func (gs *GameState) addMoveToHistory(from *Position, to Position) {
	gs.MoveHistory = append(gs.MoveHistory, MoveHistoryEntry{
		MoveNumber:     len(gs.MoveHistory) + 1,
		From:           from,
		To:             to,
		ElapsedSeconds: gs.ElapsedSeconds,
		Timestamp:      time.Now().Unix(),
	})
}

// formatIfSet renders an optional two-verb message; unset messages stay empty
func formatIfSet(format string, a, b int) string {
	if format == "" {
		return ""
	}
	return fmt.Sprintf(format, a, b)
}
