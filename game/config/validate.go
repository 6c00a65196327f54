package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/knights-tour-game/game/engine"
)

// ValidationResult captures the outcome of validating a single preset file.
// Errors holds the problems found; Info holds facts about a valid preset.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// ValidateFile loads and validates a single preset file
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
		Info:   []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.UnmarshalGameConfig(path, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	size := config.GridSize
	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", config.Name),
		fmt.Sprintf("Grid: %dx%d (%d squares)", size, size, size*size),
		fmt.Sprintf("Corner degree: %d", engine.KnightDegree(size, engine.Position{Row: 0, Col: 0})),
	)
	if engine.TourPossible(size) {
		result.Info = append(result.Info, "Full tour: possible")
	} else {
		result.Info = append(result.Info, fmt.Sprintf("Full tour: impossible on %dx%d, every run ends stuck", size, size))
	}

	return result
}

// ValidateDir validates every preset file in dir, sorted by file name
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || configID(entry.Name()) == entry.Name() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	results := make([]ValidationResult, 0, len(names))
	for _, name := range names {
		results = append(results, ValidateFile(filepath.Join(dir, name)))
	}
	return results, nil
}
