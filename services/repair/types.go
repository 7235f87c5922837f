// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package repair implements the iterative test-driven repair loop.
//
// The loop is built from small, separately testable pieces: a failure
// extractor that maps failing-test identifiers to test source files, a
// context collector that snapshots the project's main sources, a prompt
// assembler that renders a single generation prompt, a cycle engine that
// drives one full test -> extract -> collect -> prompt -> generate ->
// apply -> retest pass, and a session controller that runs cycles under
// human control.
//
// Thread Safety:
//
//	The repair loop is deliberately sequential. Exactly one cycle is in
//	flight at a time; SessionState is mutated only between cycles.
package repair

import (
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianMend/services/repair/llm"
)

// SourceFile is a read-only snapshot of one project file.
//
// The content is read at one instant and is not re-validated before use
// later in the same cycle.
type SourceFile struct {
	// RelPath is the path relative to the project root.
	RelPath string

	// Content is the full file text. Empty for a test file that the
	// failure extractor could not find on disk.
	Content string
}

// CycleResult is the outcome of one repair cycle.
type CycleResult struct {
	// CycleID uniquely identifies the cycle for logs and audit.
	CycleID string

	// Passed is true if the final (or pre-check) test run succeeded.
	Passed bool

	// PassedEarly is true if the pre-check run already passed and the
	// cycle terminated without any generation call.
	PassedEarly bool

	// Generated is true if a generation call was issued.
	Generated bool

	// TestOutput is the raw text of the most recent test run.
	TestOutput string
}

// SessionState carries everything that survives between cycles.
//
// It is created once at process start and threaded through the session
// controller and the cycle engine by parameter. It is never mutated
// while a cycle is running.
type SessionState struct {
	// SessionID identifies this process run in the session log.
	SessionID string

	// Model is the active model identifier.
	Model string

	// Backend is the active code-generation backend for Model.
	Backend llm.Client

	// Hints is the ordered, append-only list of human-supplied steering
	// strings. Hints are never cleared; they survive model switches and
	// watch-mode triggers.
	Hints []string

	// BuildDescriptor is the project build file text (pom.xml), read
	// once at process start and reused unchanged in every prompt.
	BuildDescriptor string

	// LastFailures is the ordered failing-test identifier list from the
	// most recent test run. Forced cycles reuse it instead of running a
	// fresh pre-check.
	LastFailures []string

	// LastTestOutput is the raw output of the most recent test run.
	LastTestOutput string
}

// NewSessionState creates the per-process session state.
func NewSessionState(model string, backend llm.Client, buildDescriptor string) *SessionState {
	return &SessionState{
		SessionID:       uuid.NewString(),
		Model:           model,
		Backend:         backend,
		BuildDescriptor: buildDescriptor,
	}
}

// AddHint appends a hint. Hints are injected verbatim into every
// subsequent prompt until the process exits.
func (s *SessionState) AddHint(hint string) {
	s.Hints = append(s.Hints, hint)
}

// SwitchBackend swaps the active model and backend. Hints and the cached
// build descriptor are deliberately untouched.
func (s *SessionState) SwitchBackend(model string, backend llm.Client) {
	s.Model = model
	s.Backend = backend
}
