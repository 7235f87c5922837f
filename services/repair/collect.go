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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ContextCollector snapshots the project's main sources for one cycle.
//
// Collection is read-only: every file below the main-source root whose
// name ends with the configured extension, paired with its full content
// read at call time. Order is stable (lexical walk order) but callers
// must not depend on anything beyond stability.
type ContextCollector struct {
	// projectRoot is the absolute project root.
	projectRoot string

	// mainDir is the main-source directory relative to projectRoot,
	// e.g. "src/main/java".
	mainDir string

	// ext is the source file extension to collect, e.g. ".java".
	ext string
}

// NewContextCollector creates a collector rooted at projectRoot/mainDir.
func NewContextCollector(projectRoot, mainDir, ext string) *ContextCollector {
	return &ContextCollector{
		projectRoot: projectRoot,
		mainDir:     mainDir,
		ext:         ext,
	}
}

// Collect enumerates and reads all matching files.
//
// Outputs:
//
//	[]SourceFile - All matching files with content, walk order
//	error - ErrSourceRootMissing if the root does not exist; individual
//	        read failures propagate unwrapped beyond the path context
func (c *ContextCollector) Collect() ([]SourceFile, error) {
	root := filepath.Join(c.projectRoot, c.mainDir)

	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceRootMissing, root)
		}
		return nil, fmt.Errorf("stat source root: %w", err)
	}

	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), c.ext) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rel, err := filepath.Rel(c.projectRoot, path)
		if err != nil {
			rel = path
		}

		files = append(files, SourceFile{RelPath: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
