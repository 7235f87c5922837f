// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// MendConfig is the persisted user configuration. CLI flags override
// individual fields per run; the file holds the durable defaults.
type MendConfig struct {
	// DefaultModel is used when --model is not given.
	DefaultModel string `yaml:"default_model"`

	// TestCommand is the test invocation argv. Empty means the built-in
	// Maven default.
	TestCommand []string `yaml:"test_command"`

	// TestDir is the test-source root, relative to the project root.
	TestDir string `yaml:"test_dir"`

	// MainDir is the main-source root, relative to the project root.
	MainDir string `yaml:"main_dir"`

	// Ext is the source file extension, with leading dot.
	Ext string `yaml:"ext"`

	// ScratchDir is the scratch directory name inside the project root.
	ScratchDir string `yaml:"scratch_dir"`

	// DebounceMillis is the watch-mode quiet period.
	DebounceMillis int `yaml:"debounce_millis"`

	// Logging controls file logging.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Dir enables JSON file logging when non-empty. Supports ~.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() MendConfig {
	return MendConfig{
		DefaultModel:   "gpt-4o",
		TestCommand:    nil,
		TestDir:        "src/test/java",
		MainDir:        "src/main/java",
		Ext:            ".java",
		ScratchDir:     ".mend",
		DebounceMillis: 500,
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.mend/logs",
		},
	}
}
