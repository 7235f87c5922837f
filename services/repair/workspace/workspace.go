// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workspace owns the per-project scratch directory.
//
// The scratch directory holds everything the repair loop writes outside
// the project sources: the test report, the append-only session log,
// and the archive of file versions replaced by generated code. It is
// cleared at the start of every process run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ScratchDirName is the default scratch directory, relative to the
	// project root.
	ScratchDirName = ".mend"

	// archiveDirName nests under the scratch directory and preserves
	// pre-apply versions of modified files.
	archiveDirName = "archive"

	// versionsDirName nests under the archive directory.
	versionsDirName = "versions"

	// sessionLogName is the append-only audit log. Written, never read.
	sessionLogName = "session.log"

	// testReportName is where the test runner writes its plain-text
	// report each run.
	testReportName = "test-output.txt"
)

// Workspace locates the scratch directory for one project.
type Workspace struct {
	// ProjectRoot is the absolute project root.
	ProjectRoot string

	// ScratchDir is the absolute scratch directory path.
	ScratchDir string
}

// New creates a Workspace for the project root. scratchName overrides
// the default scratch directory name when non-empty.
func New(projectRoot, scratchName string) *Workspace {
	if scratchName == "" {
		scratchName = ScratchDirName
	}
	return &Workspace{
		ProjectRoot: projectRoot,
		ScratchDir:  filepath.Join(projectRoot, scratchName),
	}
}

// Prepare clears and recreates the scratch directory, including the
// nested archive subdirectory. Called once per process run.
func (w *Workspace) Prepare() error {
	if err := os.RemoveAll(w.ScratchDir); err != nil {
		return fmt.Errorf("clearing scratch dir: %w", err)
	}
	if err := os.MkdirAll(w.ArchiveDir(), 0755); err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	return nil
}

// ArchiveDir returns the versions archive directory.
func (w *Workspace) ArchiveDir() string {
	return filepath.Join(w.ScratchDir, archiveDirName, versionsDirName)
}

// SessionLogPath returns the append-only session log path.
func (w *Workspace) SessionLogPath() string {
	return filepath.Join(w.ScratchDir, sessionLogName)
}

// TestReportPath returns the test report path.
func (w *Workspace) TestReportPath() string {
	return filepath.Join(w.ScratchDir, testReportName)
}

// ReadBuildDescriptor reads the project build file (pom.xml) once.
// The caller caches the result for the process lifetime; it is not
// re-read even if the descriptor changes on disk.
func (w *Workspace) ReadBuildDescriptor() (string, error) {
	data, err := os.ReadFile(filepath.Join(w.ProjectRoot, "pom.xml"))
	if err != nil {
		return "", fmt.Errorf("reading build descriptor: %w", err)
	}
	return string(data), nil
}
