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

// Overrides are per-run values, typically from CLI flags. A zero field
// means "no override"; precedence is flag over file over built-in
// default.
type Overrides struct {
	Model       string
	TestCommand []string
	TestDir     string
	MainDir     string
	Ext         string
	ScratchDir  string
	LogLevel    string
}

// Merged returns the effective configuration after applying overrides.
// The receiver is not modified.
func (c MendConfig) Merged(o Overrides) MendConfig {
	merged := c

	if o.Model != "" {
		merged.DefaultModel = o.Model
	}
	if len(o.TestCommand) > 0 {
		merged.TestCommand = o.TestCommand
	}
	if o.TestDir != "" {
		merged.TestDir = o.TestDir
	}
	if o.MainDir != "" {
		merged.MainDir = o.MainDir
	}
	if o.Ext != "" {
		merged.Ext = o.Ext
	}
	if o.ScratchDir != "" {
		merged.ScratchDir = o.ScratchDir
	}
	if o.LogLevel != "" {
		merged.Logging.Level = o.LogLevel
	}

	return merged
}
