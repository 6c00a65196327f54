package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	valid := createValidConfig()
	writeConfigFile(t, dir, "valid.yaml", valid)

	tiny := createValidConfig()
	tiny.GridSize = 3
	writeConfigFile(t, dir, "tiny.json", tiny)

	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "Broken"`), 0644)
	os.WriteFile(filepath.Join(dir, "small.json"), []byte(`{"name": "Small", "description": "d", "grid_size": 2}`), 0644)

	tests := []struct {
		file      string
		wantValid bool
		contains  string
	}{
		{"valid.yaml", true, "Full tour: possible"},
		{"tiny.json", true, "impossible on 3x3"},
		{"broken.json", false, "parse"},
		{"small.json", false, "grid size"},
		{"missing.json", false, "Failed to read"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result := ValidateFile(filepath.Join(dir, tt.file))
			if result.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%v, got %v (errors %v)", tt.wantValid, result.Valid, result.Errors)
			}
			lines := result.Errors
			if result.Valid {
				lines = result.Info
			}
			if !strings.Contains(strings.Join(lines, "\n"), tt.contains) {
				t.Errorf("Expected %q in %v", tt.contains, lines)
			}
			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
		})
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	writeConfigFile(t, dir, "b.yaml", createValidConfig())
	writeConfigFile(t, dir, "a.json", createValidConfig())
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	results, err := ValidateDir(dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].File != "a.json" || results[1].File != "b.yaml" {
		t.Errorf("Expected sorted results, got %s, %s", results[0].File, results[1].File)
	}

	if _, err := ValidateDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestShippedPresetsAreValid(t *testing.T) {
	results, err := ValidateDir(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("Expected 4 shipped presets, got %d", len(results))
	}
	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
}
