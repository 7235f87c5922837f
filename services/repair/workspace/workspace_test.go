// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareClearsScratchDir(t *testing.T) {
	root := t.TempDir()
	w := New(root, "")

	assert.Equal(t, filepath.Join(root, ScratchDirName), w.ScratchDir)

	require.NoError(t, w.Prepare())
	assert.DirExists(t, w.ArchiveDir())

	// Stale contents from a previous run are removed.
	stale := filepath.Join(w.ScratchDir, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	require.NoError(t, w.Prepare())
	assert.NoFileExists(t, stale)
	assert.DirExists(t, w.ArchiveDir())
}

func TestCustomScratchName(t *testing.T) {
	root := t.TempDir()
	w := New(root, ".custom")
	assert.Equal(t, filepath.Join(root, ".custom"), w.ScratchDir)
}

func TestPathsNestUnderScratchDir(t *testing.T) {
	w := New("/proj", "")

	assert.Equal(t, filepath.Join("/proj", ".mend", "session.log"), w.SessionLogPath())
	assert.Equal(t, filepath.Join("/proj", ".mend", "test-output.txt"), w.TestReportPath())
	assert.Equal(t, filepath.Join("/proj", ".mend", "archive", "versions"), w.ArchiveDir())
}

func TestReadBuildDescriptor(t *testing.T) {
	root := t.TempDir()
	w := New(root, "")

	t.Run("missing descriptor is an error", func(t *testing.T) {
		_, err := w.ReadBuildDescriptor()
		assert.Error(t, err)
	})

	t.Run("reads pom content", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "pom.xml"), []byte("<project/>"), 0644))
		content, err := w.ReadBuildDescriptor()
		require.NoError(t, err)
		assert.Equal(t, "<project/>", content)
	})
}
