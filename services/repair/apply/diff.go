// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package apply

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// looksLikeUnifiedDiff reports whether the generated text is a unified
// diff rather than a file-block response. Detection requires both file
// markers and at least one hunk header so that prose mentioning "---"
// is not misread as a patch.
func looksLikeUnifiedDiff(generated string) bool {
	hasOld, hasNew, hasHunk := false, false, false
	for _, line := range strings.Split(generated, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "):
			hasOld = true
		case strings.HasPrefix(line, "+++ "):
			hasNew = true
		case strings.HasPrefix(line, "@@ "):
			hasHunk = true
		}
		if hasOld && hasNew && hasHunk {
			return true
		}
	}
	return false
}

// parseUnifiedDiff converts a unified diff into whole-file blocks by
// applying each file diff against the current on-disk content. The
// resulting blocks go through the same archive-then-write path as
// file-block responses.
func (a *Applier) parseUnifiedDiff(generated string) ([]FileBlock, error) {
	fenced := extractDiffBody(generated)

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(fenced))
	if err != nil {
		return nil, fmt.Errorf("parsing unified diff: %w", err)
	}

	var blocks []FileBlock
	for _, fd := range fileDiffs {
		relPath := diffTargetPath(fd)
		if relPath == "" {
			return nil, fmt.Errorf("diff entry has no usable file path")
		}

		fullPath := filepath.Join(a.projectRoot, relPath)
		if !isPathSafe(a.projectRoot, fullPath) {
			return nil, fmt.Errorf("diff path escapes project root: %s", relPath)
		}

		var original string
		if data, err := os.ReadFile(fullPath); err == nil {
			original = string(data)
		}

		patched, err := applyFileDiff(original, fd)
		if err != nil {
			return nil, fmt.Errorf("applying diff to %s: %w", relPath, err)
		}

		blocks = append(blocks, FileBlock{RelPath: relPath, Content: patched})
	}

	return blocks, nil
}

// extractDiffBody strips a surrounding markdown fence, if any, so the
// diff parser sees only patch text.
func extractDiffBody(generated string) string {
	lines := strings.Split(generated, "\n")
	start, end := 0, len(lines)

	for start < end && !strings.HasPrefix(lines[start], "--- ") {
		start++
	}
	for end > start {
		trailing := strings.TrimSpace(lines[end-1])
		if trailing != "" && trailing != "```" {
			break
		}
		end--
	}
	if start == end {
		return generated
	}
	return strings.Join(lines[start:end], "\n")
}

// diffTargetPath picks the new-file path, falling back to the old one,
// with git-style a/ and b/ prefixes removed.
func diffTargetPath(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimPrefix(name, "b/")
	name = strings.TrimPrefix(name, "a/")
	if name == "/dev/null" {
		return ""
	}
	return filepath.FromSlash(name)
}

// applyFileDiff applies one file's hunks to the original content.
// Hunks must apply at their declared positions; no fuzzing.
func applyFileDiff(original string, fd *diff.FileDiff) (string, error) {
	origLines := strings.Split(original, "\n")
	if original == "" {
		origLines = nil
	}

	var result []string
	cursor := 0 // index into origLines, 0-based

	for _, hunk := range fd.Hunks {
		hunkStart := int(hunk.OrigStartLine) - 1
		if hunk.OrigLines == 0 {
			// Pure-insert hunk against an empty region.
			hunkStart = int(hunk.OrigStartLine)
		}
		if hunkStart < cursor || hunkStart > len(origLines) {
			return "", fmt.Errorf("hunk start %d out of range", hunk.OrigStartLine)
		}

		result = append(result, origLines[cursor:hunkStart]...)
		cursor = hunkStart

		for _, line := range strings.Split(string(hunk.Body), "\n") {
			if line == "" {
				continue
			}
			op, text := line[0], line[1:]
			switch op {
			case ' ':
				if cursor >= len(origLines) || origLines[cursor] != text {
					return "", fmt.Errorf("context mismatch at line %d", cursor+1)
				}
				result = append(result, text)
				cursor++
			case '-':
				if cursor >= len(origLines) || origLines[cursor] != text {
					return "", fmt.Errorf("removed line mismatch at line %d", cursor+1)
				}
				cursor++
			case '+':
				result = append(result, text)
			case '\\':
				// "\ No newline at end of file" marker; ignore.
			default:
				return "", fmt.Errorf("malformed hunk line: %q", line)
			}
		}
	}

	result = append(result, origLines[cursor:]...)
	return strings.Join(result, "\n"), nil
}
