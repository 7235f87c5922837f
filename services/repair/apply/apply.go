// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package apply writes AI-generated code to the project tree.
//
// Generated responses arrive in one of two forms: a sequence of file
// blocks ("File: <path>" headers followed by content, optionally
// fenced) or a unified diff. The applier detects the form, parses file
// boundaries, and writes each file under the project root. Before an
// existing file is overwritten, its prior version is archived into the
// scratch directory with a timestamped name.
package apply

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

// ErrNoFiles indicates the generated text contained no recognizable
// file boundaries. Fatal to the cycle: nothing can be applied.
var ErrNoFiles = errors.New("generated text contains no file blocks")

// fileHeaderPattern matches file-block headers. Models prefix the
// header with comment markers often enough that they are tolerated.
var fileHeaderPattern = regexp.MustCompile(`^(?://|#)?\s*File:\s*(\S+)\s*$`)

// FileBlock is one parsed file from a generated response.
type FileBlock struct {
	// RelPath is the declared path, relative to the project root.
	RelPath string

	// Content is the full new file content.
	Content string
}

// Applier writes generated code into the project tree.
//
// Thread Safety: Apply must not be called concurrently; the repair loop
// is sequential by design.
type Applier struct {
	// projectRoot is the absolute project root.
	projectRoot string

	// archiveDir receives timestamped copies of overwritten files.
	archiveDir string

	// ext is the expected source extension, used only for logging
	// unexpected paths; any declared path inside the root is written.
	ext string

	log *logging.Logger
}

// NewApplier creates an applier for the project.
func NewApplier(projectRoot, archiveDir, ext string, log *logging.Logger) *Applier {
	return &Applier{
		projectRoot: projectRoot,
		archiveDir:  archiveDir,
		ext:         ext,
		log:         log,
	}
}

// Apply parses the generated text and writes every file it declares.
//
// Inputs:
//
//	generated - Raw AI response text
//
// Outputs:
//
//	[]string - Relative paths written, in response order
//	error - Non-nil on parse failure, unsafe paths, or write failure;
//	        any error is fatal to the current cycle and not retried
func (a *Applier) Apply(generated string) ([]string, error) {
	var blocks []FileBlock
	var err error

	if looksLikeUnifiedDiff(generated) {
		blocks, err = a.parseUnifiedDiff(generated)
	} else {
		blocks, err = ParseFileBlocks(generated)
	}
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrNoFiles
	}

	written := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if err := a.writeBlock(block); err != nil {
			return written, err
		}
		written = append(written, block.RelPath)
	}

	a.log.Info("applied generated code", "files", len(written))
	return written, nil
}

// ParseFileBlocks splits a file-block response into its files.
//
// A block starts at a "File: <path>" header and runs until the next
// header or end of text. Markdown code fences directly surrounding the
// content are stripped.
func ParseFileBlocks(generated string) ([]FileBlock, error) {
	var blocks []FileBlock
	var current *FileBlock
	var lines []string

	flush := func() {
		if current != nil {
			current.Content = stripFences(lines)
			blocks = append(blocks, *current)
			current = nil
			lines = nil
		}
	}

	for _, line := range strings.Split(generated, "\n") {
		if m := fileHeaderPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			current = &FileBlock{RelPath: filepath.FromSlash(m[1])}
			continue
		}
		if current != nil {
			lines = append(lines, line)
		}
	}
	flush()

	return blocks, nil
}

// stripFences removes leading/trailing markdown code fences and outer
// blank lines, preserving everything in between verbatim.
func stripFences(lines []string) string {
	start, end := 0, len(lines)

	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start < end && strings.HasPrefix(strings.TrimSpace(lines[start]), "```") {
		start++
	}
	if end > start && strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}

	return strings.Join(lines[start:end], "\n")
}

// writeBlock archives any existing version and writes the new content.
func (a *Applier) writeBlock(block FileBlock) error {
	fullPath := filepath.Join(a.projectRoot, block.RelPath)

	if !isPathSafe(a.projectRoot, fullPath) {
		return fmt.Errorf("path escapes project root: %s", block.RelPath)
	}

	if !strings.HasSuffix(block.RelPath, a.ext) {
		a.log.Warn("generated file has unexpected extension", "path", block.RelPath)
	}

	if _, err := os.Stat(fullPath); err == nil {
		if err := a.archive(block.RelPath, fullPath); err != nil {
			a.log.Warn("could not archive prior version", "path", block.RelPath, "error", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directories for %s: %w", block.RelPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(block.Content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", block.RelPath, err)
	}

	a.log.Debug("wrote generated file", "path", block.RelPath, "bytes", len(block.Content))
	return nil
}

// archive copies the current file version into the archive directory
// under its relative path, with a timestamp suffix before the
// extension: App.java becomes App_20241111T005544756Z.java.
func (a *Applier) archive(relPath, fullPath string) error {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return err
	}

	ts := strings.ReplaceAll(time.Now().UTC().Format("20060102T150405.000Z"), ".", "")
	ext := filepath.Ext(relPath)
	base := strings.TrimSuffix(filepath.Base(relPath), ext)
	archived := filepath.Join(a.archiveDir, filepath.Dir(relPath),
		fmt.Sprintf("%s_%s%s", base, ts, ext))

	if err := os.MkdirAll(filepath.Dir(archived), 0755); err != nil {
		return err
	}
	return os.WriteFile(archived, data, 0644)
}

// isPathSafe checks that fullPath stays inside root.
func isPathSafe(root, fullPath string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(fullPath))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
