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
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// FailureExtractor turns failing-test identifiers into test source files.
//
// # Description
//
// Test runners report failures in two shapes:
//
//	testFoo(org.example.ThingTest)    method(FullyQualifiedClass)
//	org.example.OtherTest.testBar     dotted path, method last
//
// The extractor derives the owning class for each identifier, maps it to
// a file under the test-source root, and reads the content when the file
// exists. A missing test file yields an empty-content placeholder, not
// an error.
//
// Resulting paths are NOT deduplicated: two failed methods on the same
// class produce the same path twice. Callers rely on the output order
// matching the input order.
type FailureExtractor struct {
	// projectRoot is the absolute project root.
	projectRoot string

	// testDir is the test-source directory relative to projectRoot,
	// e.g. "src/test/java".
	testDir string

	// ext is the test source file extension, e.g. ".java".
	ext string
}

// NewFailureExtractor creates an extractor rooted at projectRoot/testDir.
func NewFailureExtractor(projectRoot, testDir, ext string) *FailureExtractor {
	return &FailureExtractor{
		projectRoot: projectRoot,
		testDir:     testDir,
		ext:         ext,
	}
}

// Extract maps an ordered failure list to an ordered test-file list.
//
// Inputs:
//
//	failures - Raw failing-test identifiers, in test-runner order
//
// Outputs:
//
//	[]SourceFile - One entry per failure, same order, duplicates kept
func (x *FailureExtractor) Extract(failures []string) []SourceFile {
	files := make([]SourceFile, 0, len(failures))

	for _, failure := range failures {
		class := OwningClass(failure)
		rel := x.classToRelPath(class)

		content := ""
		if data, err := os.ReadFile(filepath.Join(x.projectRoot, rel)); err == nil {
			content = string(data)
		}

		files = append(files, SourceFile{RelPath: rel, Content: content})
	}

	return files
}

// OwningClass derives the fully qualified class name from a raw
// failing-test identifier.
//
// Rules, in order:
//
//  1. If the identifier contains a parenthesis group, the class is the
//     text inside the first pair: "testFoo(org.ex.ThingTest)" yields
//     "org.ex.ThingTest".
//  2. Otherwise the identifier is a dotted path. If the final segment
//     begins with a lowercase letter it is a method name and is dropped;
//     if it begins with an uppercase letter the whole string is already
//     the class name.
//
// A malformed identifier (empty string, empty parens) yields whatever
// falls out of the rules, possibly the empty string. That in turn maps
// to a non-existent path, which Extract treats as absent content.
func OwningClass(failure string) string {
	if open := strings.Index(failure, "("); open >= 0 {
		rest := failure[open+1:]
		if close := strings.Index(rest, ")"); close >= 0 {
			return rest[:close]
		}
		return rest
	}

	segments := strings.Split(failure, ".")
	last := segments[len(segments)-1]
	if startsLower(last) && len(segments) > 1 {
		return strings.Join(segments[:len(segments)-1], ".")
	}
	return failure
}

// classToRelPath maps a dotted class name to a path under the test root.
func (x *FailureExtractor) classToRelPath(class string) string {
	parts := strings.Split(class, ".")
	return filepath.Join(x.testDir, filepath.Join(parts...)+x.ext)
}

// startsLower reports whether the first rune is a lowercase letter.
func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
