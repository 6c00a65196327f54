// Package config provides board preset management for the Knight's Tour game.
//
// The config package handles:
//   - Loading presets from JSON or YAML files
//   - Preset validation and verification
//   - Default preset selection
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets live in the configs directory as <id>.json, <id>.yaml or <id>.yml.
// Each preset defines a display name, a description, a grid size between 3
// and 10, and the message templates shown during play. The victory template
// takes four integers (visited, seconds, size, size) and the stuck template
// takes two (visited, total).
//
// Shipped Presets:
//   - classic: 5x5, the smallest board with a full tour
//   - tiny: 3x3, no full tour exists
//   - chessboard: 8x8
//   - grand: 10x10
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadConfig("tiny")
//	defaultPreset := manager.GetDefault()
//	presets, err := manager.ListConfigs()
//
// The default preset is classic when present, otherwise the first valid
// preset in the directory, otherwise the built-in classic board.
package config
