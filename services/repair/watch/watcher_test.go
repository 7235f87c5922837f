// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

func quietLog() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func TestWatcherRequiresAWatchableRoot(t *testing.T) {
	_, err := NewWatcher([]string{"/does/not/exist-a", "/does/not/exist-b"}, ".java", 0, quietLog())
	assert.Error(t, err)
}

func TestWatcherSkipsMissingRoots(t *testing.T) {
	existing := t.TempDir()
	w, err := NewWatcher([]string{existing, "/does/not/exist"}, ".java", 0, quietLog())
	require.NoError(t, err)
	t.Cleanup(func() { w.watcher.Close() })
}

func TestWatcherBatchesChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "org", "ex"), 0755))

	w, err := NewWatcher([]string{root}, ".java", 50*time.Millisecond, quietLog())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Two rapid writes to the same file collapse into one batch entry.
	target := filepath.Join(root, "org", "ex", "App.java")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "org", "ex", "Other.java"), []byte("x"), 0644))

	select {
	case batch := <-w.Changes():
		assert.Contains(t, batch, target)
		// Deduplicated: each path at most once.
		seen := map[string]int{}
		for _, p := range batch {
			seen[p]++
		}
		for p, n := range seen {
			assert.Equal(t, 1, n, p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch delivered")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher([]string{root}, ".java", 50*time.Millisecond, quietLog())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	select {
	case batch := <-w.Changes():
		for _, p := range batch {
			assert.NotContains(t, p, "notes.txt")
		}
	case <-time.After(300 * time.Millisecond):
		// No batch at all is the expected outcome.
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)

	assert.Empty(t, dedupe(nil))
}
