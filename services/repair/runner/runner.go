// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runner invokes the project's test suite and summarizes its
// failures.
//
// The runner is a thin subprocess wrapper around Maven. Each run writes
// the full plain-text report to a fixed file inside the scratch
// directory and reports pass/fail; Summarize extracts the ordered list
// of failing-test identifiers from the raw output.
package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

// DefaultCommand is the test invocation when the config does not
// override it. Batch mode keeps the output parseable.
var DefaultCommand = []string{"mvn", "-B", "test"}

// MavenRunner runs the suite via a Maven subprocess.
//
// Thread Safety: Run must not be called concurrently; the repair loop
// is sequential by design.
type MavenRunner struct {
	// command is the argv of the test invocation.
	command []string

	log *logging.Logger
}

// NewMavenRunner creates a runner. command overrides DefaultCommand
// when non-empty.
func NewMavenRunner(command []string, log *logging.Logger) *MavenRunner {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &MavenRunner{command: command, log: log}
}

// Run executes the test suite in projectRoot.
//
// Inputs:
//
//	projectRoot - Directory to run the suite in
//	reportPath - File the plain-text report is written to
//
// Outputs:
//
//	bool - True if the suite passed (exit code zero)
//	string - The combined stdout/stderr text
//	error - Non-nil only if the subprocess could not run at all;
//	        test failures are a signal, not an error
func (r *MavenRunner) Run(projectRoot, reportPath string) (bool, string, error) {
	r.log.Info("running test suite", "command", r.command[0], "project", projectRoot)

	cmd := exec.Command(r.command[0], r.command[1:]...)
	cmd.Dir = projectRoot

	out, err := cmd.CombinedOutput()
	output := string(out)

	if writeErr := os.WriteFile(reportPath, out, 0644); writeErr != nil {
		r.log.Warn("could not write test report", "path", reportPath, "error", writeErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit: the suite ran and failed.
			return false, output, nil
		}
		return false, output, fmt.Errorf("starting test runner: %w", err)
	}

	return true, output, nil
}
