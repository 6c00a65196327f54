package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/knights-tour-game/game/engine"
)

func createValidConfig() *engine.GameConfig {
	config := engine.DefaultConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	var data []byte
	var err error
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("classic preferred as default", func(t *testing.T) {
		dir := t.TempDir()

		other := createValidConfig()
		other.Name = "Another"
		writeConfigFile(t, dir, "another", other)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic as default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("first valid preset when classic missing", func(t *testing.T) {
		dir := t.TempDir()

		config := createValidConfig()
		config.Name = "Alpha"
		writeConfigFile(t, dir, "alpha.yaml", config)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected Alpha as default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in preset", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without preset files, got: %v", err)
		}
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil || defaultConfig.Name != "classic" || defaultConfig.GridSize != 5 {
			t.Errorf("Expected built-in classic 5x5 preset, got %+v", defaultConfig)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	jsonConfig := createValidConfig()
	jsonConfig.Name = "Json"
	jsonConfig.GridSize = 6
	writeConfigFile(t, dir, "json_preset", jsonConfig)

	yamlConfig := createValidConfig()
	yamlConfig.Name = "Yaml"
	yamlConfig.GridSize = 7
	writeConfigFile(t, dir, "yaml_preset.yaml", yamlConfig)

	ymlConfig := createValidConfig()
	ymlConfig.Name = "Yml"
	writeConfigFile(t, dir, "yml_preset.yml", ymlConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name     string
		id       string
		wantName string
		wantSize int
	}{
		{"json by id", "json_preset", "Json", 6},
		{"json with extension", "json_preset.json", "Json", 6},
		{"yaml by id", "yaml_preset", "Yaml", 7},
		{"yaml with extension", "yaml_preset.yaml", "Yaml", 7},
		{"yml by id", "yml_preset", "Yml", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.id)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if config.Name != tt.wantName || config.GridSize != tt.wantSize {
				t.Errorf("Expected %s/%d, got %s/%d", tt.wantName, tt.wantSize, config.Name, config.GridSize)
			}
			if config.Messages.Victory == "" {
				t.Error("Expected messages to be decoded")
			}
		})
	}

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("json_preset")
		config2, _ := manager.LoadConfig("json_preset")
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		if _, err := manager.LoadConfig("non-existent"); err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		if _, err := manager.LoadConfig("../etc/passwd"); err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644)

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if !errors.Is(err, engine.ErrInvalidConfiguration) {
			t.Errorf("Expected the engine validation error to be wrapped, got %v", err)
		}
	})

	t.Run("out of range grid size", func(t *testing.T) {
		big := createValidConfig()
		big.GridSize = 11
		writeConfigFile(t, dir, "too_big.yaml", big)

		if _, err := manager.LoadConfig("too_big"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed files", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644)
		os.WriteFile(filepath.Join(dir, "malformed_yaml.yaml"), []byte("name: [unterminated"), 0644)

		for _, id := range []string{"malformed", "malformed_yaml"} {
			if _, err := manager.LoadConfig(id); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%s: expected ErrInvalidConfig, got %v", id, err)
			}
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	presets := []struct {
		filename string
		name     string
		size     int
	}{
		{"classic.json", "Classic", 5},
		{"tiny.yaml", "Tiny", 3},
		{"chessboard.json", "Chessboard", 8},
		{"grand.yml", "Grand", 10},
	}

	for _, p := range presets {
		config := createValidConfig()
		config.Name = p.name
		config.GridSize = p.size
		writeConfigFile(t, dir, p.filename, config)
	}

	// Ignored: unknown extension, invalid preset, directory
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{}`), 0644)
	os.Mkdir(filepath.Join(dir, "nested.json"), 0755)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	wantIDs := []string{"chessboard", "classic", "grand", "tiny"}
	if len(configList) != len(wantIDs) {
		t.Fatalf("Expected %d configs, got %d", len(wantIDs), len(configList))
	}
	for i, info := range configList {
		if info.ConfigID != wantIDs[i] {
			t.Errorf("Position %d: expected %s, got %s", i, wantIDs[i], info.ConfigID)
		}
		if info.TourPossible != engine.TourPossible(info.GridSize) {
			t.Errorf("%s: unexpected tour_possible %v", info.ConfigID, info.TourPossible)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	config.GridSize = 6

	t.Run("json by default", func(t *testing.T) {
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}
	})

	t.Run("yaml by extension", func(t *testing.T) {
		if err := manager.SaveConfig("saved_yaml.yaml", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "saved_yaml.yaml"))
		if err != nil {
			t.Fatalf("Expected saved_yaml.yaml on disk: %v", err)
		}
		if !strings.Contains(string(data), "grid_size: 6") {
			t.Errorf("Expected YAML content, got %s", data)
		}
	})

	t.Run("round trip through a fresh manager", func(t *testing.T) {
		fresh, _ := NewManager(dir)
		for _, id := range []string{"saved", "saved_yaml"} {
			loaded, err := fresh.LoadConfig(id)
			if err != nil {
				t.Fatalf("%s: failed to load saved preset: %v", id, err)
			}
			if loaded.Name != "Saved" || loaded.GridSize != 6 {
				t.Errorf("%s: unexpected preset %+v", id, loaded)
			}
		}
	})

	t.Run("invalid preset rejected", func(t *testing.T) {
		invalid := createValidConfig()
		invalid.Messages.Victory = "no verbs"
		if err := manager.SaveConfig("invalid", invalid); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		if err := manager.SaveConfig("../escape", config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()

	classic := createValidConfig()
	classic.Name = "Classic"
	writeConfigFile(t, dir, "classic", classic)

	tiny := createValidConfig()
	tiny.Name = "Tiny"
	tiny.GridSize = 3
	writeConfigFile(t, dir, "tiny.yaml", tiny)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("tiny"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Tiny" {
		t.Errorf("Expected Tiny as default, got %s", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	classic.GridSize = 9
	writeConfigFile(t, dir, "classic", classic)
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.GetDefault().GridSize != 9 {
		t.Errorf("Expected refreshed classic with size 9, got %d", manager.GetDefault().GridSize)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		config.GridSize = 3 + i
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
			if id%10 == 0 {
				manager.ListConfigs()
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 5 {
		t.Errorf("Expected 5 configs in cache, got %d", manager.Count())
	}
}
