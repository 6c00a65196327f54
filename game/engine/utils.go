package engine

import "fmt"

// CountVisited counts the visited cells in the grid
func CountVisited(grid [][]CellStatus) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell == Visited {
				count++
			}
		}
	}
	return count
}

// FormatElapsed formats seconds as MM:SS
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// GridSizeOptions returns every selectable grid size in ascending order
func GridSizeOptions() []int {
	sizes := make([]int, 0, MaxGridSize-MinGridSize+1)
	for size := MinGridSize; size <= MaxGridSize; size++ {
		sizes = append(sizes, size)
	}
	return sizes
}

// KnightDegree returns how many cells a knight can reach from pos on an empty size x size board
func KnightDegree(size int, pos Position) int {
	degree := 0
	for _, off := range knightOffsets {
		row, col := pos.Row+off.dr, pos.Col+off.dc
		if row >= 0 && row < size && col >= 0 && col < size {
			degree++
		}
	}
	return degree
}

// TourPossible reports whether an open knight's tour exists on a size x size board.
// This is the known closed-form result, not a search.
func TourPossible(size int) bool {
	return size == 1 || size >= 5
}

// CheckInvariants verifies the state invariants and returns the first violation
func CheckInvariants(gs *GameState) error {
	if got := CountVisited(gs.Grid); got != gs.VisitedCount {
		return fmt.Errorf("visited count %d does not match %d visited cells", gs.VisitedCount, got)
	}
	if gs.KnightPos != nil {
		if !gs.InBounds(gs.KnightPos.Row, gs.KnightPos.Col) {
			return fmt.Errorf("knight at (%d,%d) is off the board", gs.KnightPos.Row, gs.KnightPos.Col)
		}
		if gs.Grid[gs.KnightPos.Row][gs.KnightPos.Col] != Visited {
			return fmt.Errorf("knight cell (%d,%d) is not visited", gs.KnightPos.Row, gs.KnightPos.Col)
		}
	}
	total := gs.Size * gs.Size
	switch gs.Status {
	case Won:
		if gs.VisitedCount != total {
			return fmt.Errorf("won with %d of %d cells visited", gs.VisitedCount, total)
		}
	case Lost:
		if len(gs.LegalMoves) != 0 || gs.VisitedCount >= total || gs.KnightPos == nil {
			return fmt.Errorf("lost state is inconsistent: %d legal moves, %d of %d visited",
				len(gs.LegalMoves), gs.VisitedCount, total)
		}
	}
	return nil
}
