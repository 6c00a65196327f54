package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// tour5x5 is an open knight's tour of the 5x5 board starting in the corner
var tour5x5 = []Position{
	{0, 0}, {1, 2}, {0, 4}, {2, 3}, {4, 4}, {3, 2}, {4, 0}, {2, 1}, {0, 2}, {1, 4},
	{3, 3}, {4, 1}, {2, 0}, {0, 1}, {1, 3}, {3, 4}, {4, 2}, {3, 0}, {1, 1}, {0, 3},
	{2, 4}, {4, 3}, {3, 1}, {1, 0}, {2, 2},
}

func createTestConfig() *GameConfig {
	config := &GameConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine integration tests",
		GridSize:    5,
	}
	config.Messages.Welcome = "Welcome to engine test!"
	config.Messages.Placed = "Placed at (%d,%d)"
	config.Messages.Moved = "Visited %d/%d"
	config.Messages.CantMove = "Can't move there!"
	config.Messages.Victory = "Victory! %d squares in %d seconds on %dx%d"
	config.Messages.Stuck = "Stuck after %d of %d"
	return config
}

func startedEngine(t *testing.T, size int) *GameEngine {
	t.Helper()
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if _, err := engine.Start(size); err != nil {
		t.Fatalf("Failed to start %dx%d run: %v", size, size, err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	state := engine.GetState()
	if state.Status != NotStarted {
		t.Errorf("Expected status %s, got %s", NotStarted, state.Status)
	}
	if state.Size != config.GridSize {
		t.Errorf("Expected preset size %d, got %d", config.GridSize, state.Size)
	}
	if len(state.LegalMoves) != 0 {
		t.Errorf("Expected no legal moves before start, got %d", len(state.LegalMoves))
	}
	if engine.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = "" // Make config invalid

	_, err := NewEngine(config)
	if err == nil {
		t.Error("Expected error for invalid config")
	}
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	if engine.GetSize() != DefaultGridSize {
		t.Errorf("Expected default size %d, got %d", DefaultGridSize, engine.GetSize())
	}
	if engine.GetConfig().Name != "classic" {
		t.Errorf("Expected classic preset, got %s", engine.GetConfig().Name)
	}
}

func TestEngine_StartEverySize(t *testing.T) {
	for _, size := range GridSizeOptions() {
		engine := startedEngine(t, size)
		state := engine.GetState()

		if state.VisitedCount != 0 {
			t.Errorf("size %d: expected visited 0, got %d", size, state.VisitedCount)
		}
		if state.Status != InProgress {
			t.Errorf("size %d: expected %s, got %s", size, InProgress, state.Status)
		}
		if state.KnightPos != nil {
			t.Errorf("size %d: expected no knight, got %+v", size, *state.KnightPos)
		}
		if len(state.LegalMoves) != size*size {
			t.Errorf("size %d: expected %d legal moves, got %d", size, size*size, len(state.LegalMoves))
		}

		seen := make(map[Position]bool)
		for _, move := range state.LegalMoves {
			seen[move] = true
		}
		if len(seen) != size*size {
			t.Errorf("size %d: expected every cell once in legal moves, got %d distinct", size, len(seen))
		}
		if state.RunID == "" {
			t.Errorf("size %d: expected run id", size)
		}
		if state.Message != "Welcome to engine test!" {
			t.Errorf("size %d: unexpected welcome message %q", size, state.Message)
		}
	}
}

func TestEngine_StartBoundaries(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{2, true},
		{3, false},
		{10, false},
		{11, true},
		{0, true},
		{-4, true},
	}

	for _, test := range tests {
		engine, _ := NewEngine(createTestConfig())
		before := engine.GetState()

		state, err := engine.Start(test.size)
		if test.wantErr {
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("Start(%d): expected ErrInvalidConfiguration, got %v", test.size, err)
			}
			if !reflect.DeepEqual(state, before) {
				t.Errorf("Start(%d): state changed on invalid size", test.size)
			}
			continue
		}
		if err != nil {
			t.Errorf("Start(%d): unexpected error %v", test.size, err)
		}
		if state.Size != test.size {
			t.Errorf("Start(%d): got size %d", test.size, state.Size)
		}
	}
}

func TestEngine_InvalidStartKeepsRunInProgress(t *testing.T) {
	engine := startedEngine(t, 5)
	engine.SelectCell(0, 0)
	before := engine.GetState()

	if _, err := engine.Start(11); err == nil {
		t.Fatal("Expected error for size 11")
	}

	if !reflect.DeepEqual(engine.GetState(), before) {
		t.Error("Expected run to be untouched by an invalid start")
	}
}

func TestEngine_PlacementAndMove(t *testing.T) {
	engine := startedEngine(t, 5)

	state, ok := engine.SelectCell(2, 2)
	if !ok {
		t.Fatal("Expected placement to be accepted")
	}
	if state.VisitedCount != 1 {
		t.Errorf("Expected visited 1, got %d", state.VisitedCount)
	}
	if state.KnightPos == nil || *state.KnightPos != (Position{2, 2}) {
		t.Errorf("Expected knight at (2,2), got %+v", state.KnightPos)
	}
	if state.Message != "Placed at (2,2)" {
		t.Errorf("Unexpected placement message %q", state.Message)
	}
	if len(state.LegalMoves) != 8 {
		t.Errorf("Expected 8 legal moves from the centre of 5x5, got %d", len(state.LegalMoves))
	}

	state, ok = engine.SelectCell(0, 1)
	if !ok {
		t.Fatal("Expected knight move to be accepted")
	}
	if state.VisitedCount != 2 {
		t.Errorf("Expected visited 2, got %d", state.VisitedCount)
	}
	if state.Message != "Visited 2/25" {
		t.Errorf("Unexpected move message %q", state.Message)
	}

	last := engine.GetLastMove()
	if last == nil {
		t.Fatal("Expected last move")
	}
	if last.From == nil || *last.From != (Position{2, 2}) || last.To != (Position{0, 1}) {
		t.Errorf("Unexpected last move %+v", last)
	}
	if last.MoveNumber != 2 {
		t.Errorf("Expected move number 2, got %d", last.MoveNumber)
	}
}

func TestEngine_RejectedSelectionsLeaveStateIdentical(t *testing.T) {
	engine := startedEngine(t, 5)
	engine.SelectCell(2, 2)
	engine.SelectCell(0, 1)

	tests := []struct {
		name     string
		row, col int
	}{
		{"already visited", 2, 2},
		{"current knight cell", 0, 1},
		{"not a knight move", 0, 2},
		{"adjacent cell", 1, 1},
		{"out of bounds negative", -1, 0},
		{"out of bounds positive", 5, 5},
		{"far corner", 4, 4},
	}

	for _, test := range tests {
		before := engine.GetState()
		after, ok := engine.SelectCell(test.row, test.col)
		if ok {
			t.Errorf("%s: expected rejection", test.name)
		}
		if !reflect.DeepEqual(before, after) {
			t.Errorf("%s: expected identical state after rejection", test.name)
		}
		if engine.CanSelect(test.row, test.col) {
			t.Errorf("%s: CanSelect should be false", test.name)
		}
	}
}

func TestEngine_SelectIgnoredWhenNotInProgress(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	before := engine.GetState()
	after, ok := engine.SelectCell(0, 0)
	if ok {
		t.Error("Expected selection before start to be ignored")
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("Expected unchanged state before start")
	}

	engine.Start(3)
	engine.SelectCell(1, 1) // centre of 3x3 loses immediately
	before = engine.GetState()
	after, ok = engine.SelectCell(0, 0)
	if ok {
		t.Error("Expected selection after loss to be ignored")
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("Expected unchanged state after loss")
	}
}

func TestEngine_LossFromCentreOf3x3(t *testing.T) {
	engine := startedEngine(t, 3)

	state, ok := engine.SelectCell(1, 1)
	if !ok {
		t.Fatal("Expected placement to be accepted")
	}
	if state.Status != Lost {
		t.Fatalf("Expected %s, got %s", Lost, state.Status)
	}
	if state.VisitedCount != 1 {
		t.Errorf("Expected visited 1, got %d", state.VisitedCount)
	}
	if len(state.LegalMoves) != 0 {
		t.Errorf("Expected no legal moves, got %v", state.LegalMoves)
	}
	if state.TerminationMessage != "Stuck after 1 of 9" {
		t.Errorf("Unexpected termination message %q", state.TerminationMessage)
	}
	if !engine.IsGameOver() || engine.IsVictory() {
		t.Error("Expected game over without victory")
	}
}

func TestEngine_WinOn5x5(t *testing.T) {
	engine := startedEngine(t, 5)

	var state *GameState
	for i, pos := range tour5x5 {
		var ok bool
		state, ok = engine.SelectCell(pos.Row, pos.Col)
		if !ok {
			t.Fatalf("move %d to %+v was rejected", i+1, pos)
		}
		if i < len(tour5x5)-1 && state.Status != InProgress {
			t.Fatalf("move %d: expected run in progress, got %s", i+1, state.Status)
		}
	}

	if state.Status != Won {
		t.Fatalf("Expected %s, got %s", Won, state.Status)
	}
	if state.VisitedCount != 25 {
		t.Errorf("Expected 25 visited, got %d", state.VisitedCount)
	}
	if !strings.Contains(state.TerminationMessage, "25") || !strings.Contains(state.TerminationMessage, "5x5") {
		t.Errorf("Expected termination message with 25 and 5x5, got %q", state.TerminationMessage)
	}
	if !engine.IsVictory() {
		t.Error("Expected victory")
	}
	if len(engine.GetMoveHistory()) != 25 {
		t.Errorf("Expected 25 history entries, got %d", len(engine.GetMoveHistory()))
	}
}

func TestEngine_WinWithDefaultMessages(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.Start(5)
	engine.Tick()
	engine.Tick()

	var state *GameState
	for _, pos := range tour5x5 {
		state, _ = engine.SelectCell(pos.Row, pos.Col)
	}

	want := "Congratulations! You completed the tour of all 25 squares in 2 seconds on a 5x5 grid!"
	if state.TerminationMessage != want {
		t.Errorf("Expected %q, got %q", want, state.TerminationMessage)
	}
}

func TestEngine_WinHasPriorityOverLoss(t *testing.T) {
	engine := startedEngine(t, 5)
	for _, pos := range tour5x5[:24] {
		engine.SelectCell(pos.Row, pos.Col)
	}

	// The final square leaves the knight with nowhere to go
	state, ok := engine.SelectCell(2, 2)
	if !ok {
		t.Fatal("Expected final move to be accepted")
	}
	if len(state.LegalMoves) != 0 {
		t.Fatalf("Expected no legal moves after the last square, got %v", state.LegalMoves)
	}
	if state.Status != Won {
		t.Errorf("Expected %s when the board fills up, got %s", Won, state.Status)
	}
}

func TestEngine_Tick(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	engine.Tick()
	if engine.GetState().ElapsedSeconds != 0 {
		t.Error("Expected tick before start to be ignored")
	}

	engine.Start(5)
	for i := 0; i < 3; i++ {
		engine.Tick()
	}
	if got := engine.GetState().ElapsedSeconds; got != 3 {
		t.Errorf("Expected 3 elapsed seconds, got %d", got)
	}

	engine.Exit()
	for i := 0; i < 3; i++ {
		engine.Tick()
	}
	if got := engine.GetState().ElapsedSeconds; got != 0 {
		t.Errorf("Expected elapsed time frozen at 0 after exit, got %d", got)
	}
}

func TestEngine_TickFrozenAfterTermination(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		moves []Position
		want  RunStatus
	}{
		{"loss", 3, []Position{{1, 1}}, Lost},
		{"win", 5, tour5x5, Won},
	}

	for _, test := range tests {
		engine := startedEngine(t, test.size)
		engine.Tick()
		for _, pos := range test.moves {
			engine.SelectCell(pos.Row, pos.Col)
		}
		if engine.GetStatus() != test.want {
			t.Fatalf("%s: expected %s, got %s", test.name, test.want, engine.GetStatus())
		}

		for i := 0; i < 5; i++ {
			engine.Tick()
		}
		if got := engine.GetState().ElapsedSeconds; got != 1 {
			t.Errorf("%s: expected elapsed frozen at 1, got %d", test.name, got)
		}
	}
}

func TestEngine_Exit(t *testing.T) {
	engine := startedEngine(t, 7)
	engine.SelectCell(3, 3)
	engine.Tick()

	state := engine.Exit()
	if state.Status != NotStarted {
		t.Errorf("Expected %s, got %s", NotStarted, state.Status)
	}
	if state.Size != 7 {
		t.Errorf("Expected size 7 to be retained, got %d", state.Size)
	}
	if state.KnightPos != nil || state.VisitedCount != 0 || state.ElapsedSeconds != 0 {
		t.Errorf("Expected cleared run, got knight=%v visited=%d elapsed=%d",
			state.KnightPos, state.VisitedCount, state.ElapsedSeconds)
	}
	if CountVisited(state.Grid) != 0 {
		t.Error("Expected empty grid after exit")
	}
	if state.RunID != "" || len(state.MoveHistory) != 0 {
		t.Error("Expected run id and history to be cleared")
	}
}

func TestEngine_Restart(t *testing.T) {
	engine := startedEngine(t, 3)
	firstRun := engine.GetRunID()
	engine.SelectCell(1, 1)
	engine.Tick()

	state := engine.Restart()
	if state.Status != InProgress {
		t.Errorf("Expected %s, got %s", InProgress, state.Status)
	}
	if state.Size != 3 {
		t.Errorf("Expected size 3, got %d", state.Size)
	}
	if state.VisitedCount != 0 || state.ElapsedSeconds != 0 || state.TerminationMessage != "" {
		t.Error("Expected a fresh run after restart")
	}
	if state.RunID == firstRun {
		t.Error("Expected a new run id after restart")
	}

	// Restart from the pre-game state starts immediately
	engine.Exit()
	if engine.Restart().Status != InProgress {
		t.Error("Expected restart after exit to be in progress")
	}
}

func TestEngine_SnapshotsAreIsolated(t *testing.T) {
	engine := startedEngine(t, 5)
	state, _ := engine.SelectCell(0, 0)

	state.Grid[4][4] = Visited
	state.KnightPos.Row = 4
	state.LegalMoves = nil

	fresh := engine.GetState()
	if fresh.Grid[4][4] != Empty {
		t.Error("Mutating a snapshot changed the engine grid")
	}
	if fresh.KnightPos.Row != 0 {
		t.Error("Mutating a snapshot moved the knight")
	}
	if len(fresh.LegalMoves) != 2 {
		t.Errorf("Expected 2 legal moves from the corner, got %d", len(fresh.LegalMoves))
	}
}

func TestEngine_ConfigManagement(t *testing.T) {
	engine := startedEngine(t, 5)

	newConfig := createTestConfig()
	newConfig.Name = "Big Board"
	newConfig.GridSize = 8

	if err := engine.SetConfig(newConfig); err != nil {
		t.Fatalf("Failed to set config: %v", err)
	}
	if engine.GetConfig().Name != "Big Board" {
		t.Errorf("Expected config name 'Big Board', got %s", engine.GetConfig().Name)
	}
	if engine.GetStatus() != NotStarted || engine.GetSize() != 8 {
		t.Errorf("Expected not-started 8x8 board, got %s %d", engine.GetStatus(), engine.GetSize())
	}

	invalid := createTestConfig()
	invalid.GridSize = 12
	if err := engine.SetConfig(invalid); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_SetState(t *testing.T) {
	engine := startedEngine(t, 5)

	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}

	state := InitGameState(4, createTestConfig())
	state.Status = InProgress
	state.LegalMoves = state.ComputeLegalMoves()
	if err := engine.SetState(state); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if engine.GetSize() != 4 {
		t.Errorf("Expected size 4, got %d", engine.GetSize())
	}

	bad := InitGameState(12, createTestConfig())
	if err := engine.SetState(bad); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}
