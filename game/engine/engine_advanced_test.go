package engine

import (
	"math/rand"
	"testing"
)

// walkAll plays every legal continuation from state and calls visit on each terminal state
func walkAll(t *testing.T, state *GameState, config *GameConfig, visit func(*GameState)) {
	t.Helper()
	if state.Status != InProgress {
		visit(state)
		return
	}
	for _, move := range state.LegalMoves {
		next := state.Clone()
		if !next.SelectCell(move.Row, move.Col, config) {
			t.Fatalf("legal move %+v was rejected", move)
		}
		if err := CheckInvariants(next); err != nil {
			t.Fatalf("invariant violated after %+v: %v", move, err)
		}
		walkAll(t, next, config, visit)
	}
}

func TestEngine_3x3NeverWon(t *testing.T) {
	state, config := createTestGameState(3)

	terminals := 0
	walkAll(t, state, config, func(final *GameState) {
		terminals++
		if final.Status != Lost {
			t.Errorf("Expected every 3x3 line of play to be lost, got %s", final.Status)
		}
		if final.VisitedCount >= 9 {
			t.Errorf("Expected fewer than 9 visited cells, got %d", final.VisitedCount)
		}
	})

	if terminals == 0 {
		t.Fatal("Expected at least one finished line of play")
	}
}

func TestEngine_RandomPlayKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range GridSizeOptions() {
		for game := 0; game < 20; game++ {
			engine := startedEngine(t, size)
			prevVisited := 0

			for step := 0; step < 4*size*size; step++ {
				before := engine.GetState()
				if before.IsGameOver() {
					break
				}

				// Mix legal picks with arbitrary clicks
				var row, col int
				if len(before.LegalMoves) > 0 && rng.Intn(3) > 0 {
					move := before.LegalMoves[rng.Intn(len(before.LegalMoves))]
					row, col = move.Row, move.Col
				} else {
					row, col = rng.Intn(size+2)-1, rng.Intn(size+2)-1
				}

				legal := engine.CanSelect(row, col)
				after, ok := engine.SelectCell(row, col)
				if ok != legal {
					t.Fatalf("size %d: CanSelect(%d,%d)=%v but SelectCell accepted=%v", size, row, col, legal, ok)
				}

				if err := CheckInvariants(after); err != nil {
					t.Fatalf("size %d: %v", size, err)
				}

				switch {
				case ok && after.VisitedCount != prevVisited+1:
					t.Fatalf("size %d: accepted move changed visited %d -> %d", size, prevVisited, after.VisitedCount)
				case !ok && after.VisitedCount != prevVisited:
					t.Fatalf("size %d: rejected move changed visited %d -> %d", size, prevVisited, after.VisitedCount)
				}
				prevVisited = after.VisitedCount

				if size < 5 && after.Status == Won {
					t.Fatalf("size %d: a full tour is impossible but the run was won", size)
				}
			}

			if !engine.IsGameOver() {
				t.Errorf("size %d: expected the run to end within %d steps", size, 4*size*size)
			}
		}
	}
}

func TestEngine_StateTransitions(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	steps := []struct {
		name string
		do   func() *GameState
		want RunStatus
	}{
		{"initial", engine.GetState, NotStarted},
		{"start", func() *GameState { s, _ := engine.Start(3); return s }, InProgress},
		{"place in centre", func() *GameState { s, _ := engine.SelectCell(1, 1); return s }, Lost},
		{"select after loss", func() *GameState { s, _ := engine.SelectCell(0, 0); return s }, Lost},
		{"restart", engine.Restart, InProgress},
		{"exit", engine.Exit, NotStarted},
		{"tick while not started", engine.Tick, NotStarted},
		{"start 5x5", func() *GameState { s, _ := engine.Start(5); return s }, InProgress},
	}

	for _, step := range steps {
		state := step.do()
		if state.Status != step.want {
			t.Errorf("%s: expected %s, got %s", step.name, step.want, state.Status)
		}
		if err := CheckInvariants(state); err != nil {
			t.Errorf("%s: %v", step.name, err)
		}
	}

	for _, pos := range tour5x5 {
		engine.SelectCell(pos.Row, pos.Col)
	}
	if engine.GetStatus() != Won {
		t.Errorf("Expected %s after the tour, got %s", Won, engine.GetStatus())
	}
	if engine.Exit().Status != NotStarted {
		t.Error("Expected exit after win to return to not started")
	}
}

func TestCheckInvariants_DetectsViolations(t *testing.T) {
	state, config := createTestGameState(5)
	state.SelectCell(0, 0, config)

	broken := state.Clone()
	broken.VisitedCount = 3
	if CheckInvariants(broken) == nil {
		t.Error("Expected visited count mismatch to be reported")
	}

	broken = state.Clone()
	broken.KnightPos = &Position{4, 4}
	if CheckInvariants(broken) == nil {
		t.Error("Expected knight on empty cell to be reported")
	}

	broken = state.Clone()
	broken.Status = Won
	if CheckInvariants(broken) == nil {
		t.Error("Expected premature win to be reported")
	}

	broken = state.Clone()
	broken.Status = Lost
	if CheckInvariants(broken) == nil {
		t.Error("Expected loss with legal moves to be reported")
	}
}
