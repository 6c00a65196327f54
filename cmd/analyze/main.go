// Command analyze prints quick, human-readable heuristics about the board
// presets in the project's configs directory. For each preset it summarizes
// the board size, how knight mobility is spread across squares, whether a
// full tour exists, and how far a greedy Warnsdorff walk from the corner gets.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/knights-tour-game/game/config"
	"github.com/wricardo/knights-tour-game/game/engine"
)

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Summarize knight mobility for every board preset",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			return analyzeDir(os.Stdout, dir)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func analyzeDir(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		return fmt.Errorf("no presets found in %s", dir)
	}

	for _, info := range presets {
		preset, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError loading preset: %v\n", info.Filename, err)
			continue
		}
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		analyzePreset(w, preset)
	}
	return nil
}

func analyzePreset(w io.Writer, preset *engine.GameConfig) {
	size := preset.GridSize

	fmt.Fprintf(w, "Name: %s\n", preset.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d (%d squares)\n", size, size, size*size)
	fmt.Fprintf(w, "Degrees: %s\n", formatHistogram(degreeHistogram(size)))
	fmt.Fprintf(w, "Corner degree: %d\n", engine.KnightDegree(size, engine.Position{Row: 0, Col: 0}))
	fmt.Fprintf(w, "Centre degree: %d\n", engine.KnightDegree(size, engine.Position{Row: size / 2, Col: size / 2}))

	if isolated := isolatedSquares(size); len(isolated) > 0 {
		fmt.Fprintf(w, "⚠️  Unreachable squares: %v\n", isolated)
	}

	if engine.TourPossible(size) {
		fmt.Fprintln(w, "Full tour: possible")
	} else {
		fmt.Fprintln(w, "Full tour: impossible, every run ends stuck")
	}

	path, won := warnsdorffTour(preset, engine.Position{Row: 0, Col: 0})
	if won {
		fmt.Fprintf(w, "Warnsdorff from (0,0): ✅ complete tour in %d moves\n", len(path))
	} else {
		fmt.Fprintf(w, "Warnsdorff from (0,0): ❌ stuck after %d of %d squares\n", len(path), size*size)
	}
}

// degreeHistogram counts squares by the number of knight moves available
// from them on an empty board
func degreeHistogram(size int) map[int]int {
	histogram := make(map[int]int)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			histogram[engine.KnightDegree(size, engine.Position{Row: row, Col: col})]++
		}
	}
	return histogram
}

func formatHistogram(histogram map[int]int) string {
	degrees := make([]int, 0, len(histogram))
	for degree := range histogram {
		degrees = append(degrees, degree)
	}
	sort.Ints(degrees)

	parts := make([]string, 0, len(degrees))
	for _, degree := range degrees {
		parts = append(parts, fmt.Sprintf("%d→%d", degree, histogram[degree]))
	}
	return strings.Join(parts, "  ")
}

// isolatedSquares lists squares no knight can ever reach or leave
func isolatedSquares(size int) []engine.Position {
	var isolated []engine.Position
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			pos := engine.Position{Row: row, Col: col}
			if engine.KnightDegree(size, pos) == 0 {
				isolated = append(isolated, pos)
			}
		}
	}
	return isolated
}

// warnsdorffTour plays a run on the preset's board, always jumping to the
// legal square with the fewest onward moves. Ties go to the first square in
// knight-offset order. It returns the visited path and whether the run was won.
func warnsdorffTour(preset *engine.GameConfig, start engine.Position) ([]engine.Position, bool) {
	eng, err := engine.NewEngine(preset)
	if err != nil {
		return nil, false
	}
	state, err := eng.Start(preset.GridSize)
	if err != nil {
		return nil, false
	}

	path := []engine.Position{}
	next := start
	for {
		var accepted bool
		state, accepted = eng.SelectCell(next.Row, next.Col)
		if !accepted {
			break
		}
		path = append(path, next)
		if state.IsGameOver() {
			break
		}

		best := -1
		for _, candidate := range state.LegalMoves {
			onward := len(state.KnightMoves(candidate))
			if best == -1 || onward < best {
				best = onward
				next = candidate
			}
		}
	}

	return path, state.Status == engine.Won
}
