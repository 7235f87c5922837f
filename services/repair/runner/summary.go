// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"regexp"
	"strings"
)

// Surefire output patterns. Identifiers come back in one of two shapes:
//
//	testFoo(org.example.ThingTest)   method(FullyQualifiedClass)
//	org.example.OtherTest.testBar    dotted path, method last
//
// Both shapes are passed through verbatim; deriving the owning class is
// the failure extractor's job.
var (
	// failureLinePattern matches per-test failure markers, e.g.
	// "testApp(org.example.AppTest)  Time elapsed: 0.01 s  <<< FAILURE!".
	failureLinePattern = regexp.MustCompile(`^(\S+\([\w.$]+\))\s+.*<<<\s+(?:FAILURE|ERROR)!`)

	// listedFailurePattern matches entries under the "Failed tests:" and
	// "Tests in error:" summary sections.
	listedFailurePattern = regexp.MustCompile(`^\s*(\w[\w$]*\([\w.$]+\))`)

	// dottedFailurePattern matches newer Surefire summary lines, e.g.
	// "[ERROR] org.example.AppTest.testApp  Time elapsed: ... <<< FAILURE!".
	dottedFailurePattern = regexp.MustCompile(`^\[ERROR\]\s+((?:[\w$]+\.)+[a-z][\w$]*)\s+.*<<<\s+(?:FAILURE|ERROR)!`)
)

// Summarize extracts the ordered failing-test identifiers from raw
// Maven output.
//
// Inputs:
//
//	output - Combined stdout/stderr of a test run
//
// Outputs:
//
//	[]string - Failing-test identifiers in report order, each in one of
//	           the two accepted shapes; the same identifier is reported
//	           once even when it appears in both the per-test marker and
//	           the summary section
func (r *MavenRunner) Summarize(output string) []string {
	var failures []string
	seen := make(map[string]bool)

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			failures = append(failures, id)
		}
	}

	inSummarySection := false
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := failureLinePattern.FindStringSubmatch(trimmed); m != nil {
			add(m[1])
			continue
		}

		if m := dottedFailurePattern.FindStringSubmatch(trimmed); m != nil {
			add(m[1])
			continue
		}

		if strings.HasPrefix(trimmed, "Failed tests:") || strings.HasPrefix(trimmed, "Tests in error:") {
			inSummarySection = true
			rest := strings.TrimSpace(strings.SplitN(trimmed, ":", 2)[1])
			if m := listedFailurePattern.FindStringSubmatch(rest); m != nil {
				add(m[1])
			}
			continue
		}

		if inSummarySection {
			if trimmed == "" {
				inSummarySection = false
				continue
			}
			if m := listedFailurePattern.FindStringSubmatch(trimmed); m != nil {
				add(m[1])
			}
		}
	}

	return failures
}
