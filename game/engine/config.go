package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateGridSize checks that size is within the supported board range
func ValidateGridSize(size int) error {
	if size < MinGridSize || size > MaxGridSize {
		return fmt.Errorf("%w: grid size must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinGridSize, MaxGridSize, size)
	}
	return nil
}

// ValidateGameConfig validates a board preset for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("%w: config validation: name is required", ErrInvalidConfiguration)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: config validation: description is required", ErrInvalidConfiguration)
	}

	if err := ValidateGridSize(config.GridSize); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: config validation: messages.welcome is required", ErrInvalidConfiguration)
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("%w: config validation: messages.victory is required", ErrInvalidConfiguration)
	}
	if config.Messages.Stuck == "" {
		return fmt.Errorf("%w: config validation: messages.stuck is required", ErrInvalidConfiguration)
	}

	// Validate format strings
	if err := checkVerbs("victory", config.Messages.Victory, 4, "visited, seconds, size, size"); err != nil {
		return err
	}
	if err := checkVerbs("stuck", config.Messages.Stuck, 2, "visited, total"); err != nil {
		return err
	}
	if config.Messages.Placed != "" {
		if err := checkVerbs("placed", config.Messages.Placed, 2, "row, col"); err != nil {
			return err
		}
	}
	if config.Messages.Moved != "" {
		if err := checkVerbs("moved", config.Messages.Moved, 2, "visited, total"); err != nil {
			return err
		}
	}

	return nil
}

// countVerbs counts the %d verbs in format. "%%" is a literal percent sign;
// any other verb is an error since messages only receive integers.
func countVerbs(format string) (int, error) {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 == len(format) {
			return n, fmt.Errorf("dangling %% at end")
		}
		i++
		switch format[i] {
		case '%':
		case 'd':
			n++
		default:
			return n, fmt.Errorf("unsupported verb %%%c", format[i])
		}
	}
	return n, nil
}

func checkVerbs(field, format string, want int, args string) error {
	n, err := countVerbs(format)
	if err != nil {
		return fmt.Errorf("%w: config validation: messages.%s: %v", ErrInvalidConfiguration, field, err)
	}
	if n != want {
		return fmt.Errorf("%w: config validation: messages.%s must contain %%d %d times (%s), got %d",
			ErrInvalidConfiguration, field, want, args, n)
	}
	return nil
}

// DefaultConfig returns the built-in classic 5x5 preset
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "The classic 5x5 board. Visit every square exactly once.",
		GridSize:    DefaultGridSize,
	}
	config.Messages.Welcome = "Pick any square to place your knight."
	config.Messages.Placed = "Knight placed at (%d,%d). Jump to a highlighted square."
	config.Messages.Moved = "Visited %d of %d squares."
	config.Messages.CantMove = "The knight can't jump there."
	config.Messages.Victory = "Congratulations! You completed the tour of all %d squares in %d seconds on a %dx%d grid!"
	config.Messages.Stuck = "No more moves possible. You visited %d out of %d squares."
	return config
}

// UnmarshalGameConfig decodes a preset, picking YAML or JSON from the file extension
func UnmarshalGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a board preset from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := UnmarshalGameConfig(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// newGrid creates a size x size grid with every cell empty
func newGrid(size int) [][]CellStatus {
	grid := make([][]CellStatus, size)
	for i := range grid {
		grid[i] = make([]CellStatus, size)
		for j := range grid[i] {
			grid[i][j] = Empty
		}
	}
	return grid
}

// InitGameState creates the pre-game state for a board of the given size.
// The caller is responsible for validating size.
func InitGameState(size int, config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	return &GameState{
		Size:         size,
		Grid:         newGrid(size),
		KnightPos:    nil,
		LegalMoves:   []Position{},
		VisitedCount: 0,
		TotalCells:   size * size,
		Status:       NotStarted,
		ConfigName:   config.Name,
		MoveHistory:  []MoveHistoryEntry{},
	}
}
