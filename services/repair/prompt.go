// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// promptTemplate is the fixed generation prompt. Substitutions, in
// order: test output, build descriptor, file dump.
const promptTemplate = `The following test output is from a failing build of this project.

Test output:
%s

Project build file:
%s

Relevant project files:
%s

Return the complete corrected content of every file that must change.
Introduce each file with a line of the form "File: <relative path>"
followed by the full file content. Do not abbreviate unchanged regions
of a file you return.`

// SystemPrompt is the fixed system message sent with every generation
// request.
const SystemPrompt = `You are an expert software engineer repairing a project so that its test suite passes. You only return file contents in the requested format, with no commentary.`

// PromptAssembler renders the generation prompt and records every
// rendered prompt in the append-only session log.
//
// Assembly is deterministic string templating: the most recent test
// output, every collected file prefixed with a "File: <relpath>" header
// and joined by blank lines, and the cached build-descriptor text. When
// hints exist, a single trailing line carries all of them joined by
// "; ", in insertion order, verbatim.
type PromptAssembler struct {
	// sessionLogPath is the append-only audit log. It is never read
	// back by the program.
	sessionLogPath string
}

// NewPromptAssembler creates an assembler writing to sessionLogPath.
func NewPromptAssembler(sessionLogPath string) *PromptAssembler {
	return &PromptAssembler{sessionLogPath: sessionLogPath}
}

// Assemble renders the prompt for one cycle.
//
// Inputs:
//
//	testOutput - Raw text of the most recent test run
//	files - Collected test and source files, in collection order
//	buildDescriptor - Cached build file text (read once per process)
//	hints - Accumulated hints, insertion order
//
// Outputs:
//
//	string - The fully rendered prompt
func (a *PromptAssembler) Assemble(testOutput string, files []SourceFile, buildDescriptor string, hints []string) string {
	blocks := make([]string, 0, len(files))
	for _, f := range files {
		blocks = append(blocks, fmt.Sprintf("File: %s\n%s", f.RelPath, f.Content))
	}

	prompt := fmt.Sprintf(promptTemplate, testOutput, buildDescriptor, strings.Join(blocks, "\n\n"))

	if len(hints) > 0 {
		prompt += "\nAdditional instructions from the developer: " + strings.Join(hints, "; ")
	}

	return prompt
}

// LogPrompt appends the rendered prompt, timestamped, to the session
// log. Log failures are returned but are not fatal to the cycle; the
// log exists for audit and debugging only.
func (a *PromptAssembler) LogPrompt(cycleID, model, prompt string) error {
	f, err := os.OpenFile(a.sessionLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return fmt.Errorf("opening session log: %w", err)
	}
	defer f.Close()

	header := fmt.Sprintf("=== %s cycle=%s model=%s\n", time.Now().Format(time.RFC3339), cycleID, model)
	if _, err := f.WriteString(header + prompt + "\n\n"); err != nil {
		return fmt.Errorf("writing session log: %w", err)
	}
	return nil
}
