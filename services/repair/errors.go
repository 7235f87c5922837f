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

import "errors"

// Sentinel errors for the repair package.
var (
	// ErrInvalidTransition indicates an invalid cycle state transition.
	ErrInvalidTransition = errors.New("invalid cycle state transition")

	// ErrSourceRootMissing indicates the main-source root does not exist.
	// This is fatal to the cycle: without sources there is no context.
	ErrSourceRootMissing = errors.New("source root does not exist")

	// ErrTestRunFailed indicates the test-runner subprocess itself failed
	// (could not start, was killed), as opposed to tests failing.
	ErrTestRunFailed = errors.New("test runner could not be executed")

	// ErrGenerationFailed indicates the backend generation call failed.
	// Cycle-fatal; the session controller decides whether to continue.
	ErrGenerationFailed = errors.New("code generation failed")

	// ErrApplyFailed indicates the generated code could not be written.
	// Cycle-fatal; not retried within the cycle.
	ErrApplyFailed = errors.New("applying generated code failed")
)
