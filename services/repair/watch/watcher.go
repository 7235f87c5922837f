// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch triggers repair cycles from filesystem activity.
//
// The watcher observes the project's source trees recursively and
// delivers debounced batches of changed paths. Rapid editor saves
// collapse into a single batch; batches are delivered one at a time so
// cycles never overlap.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

// DefaultDebounce is the quiet period after the last event before a
// batch is delivered.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes source directories and emits change batches.
//
// Thread Safety: Start may be called once; Changes is read by a single
// consumer.
type Watcher struct {
	// roots are the absolute directories watched recursively.
	roots []string

	// ext filters events to source files; other writes are ignored.
	ext string

	// debounce is the batch quiet period.
	debounce time.Duration

	watcher *fsnotify.Watcher
	changes chan []string
	log     *logging.Logger
}

// NewWatcher creates a watcher over the given directories. Directories
// that do not exist are skipped with a warning so a project without a
// main source tree can still be watched on its test tree.
func NewWatcher(roots []string, ext string, debounce time.Duration, log *logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	w := &Watcher{
		roots:    roots,
		ext:      ext,
		debounce: debounce,
		watcher:  fsWatcher,
		changes:  make(chan []string),
		log:      log,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	watching := 0
	for _, root := range roots {
		if _, statErr := os.Stat(root); statErr != nil {
			log.Warn("watch root missing, skipping", "root", root)
			continue
		}
		if err := w.addRecursive(root); err != nil {
			fsWatcher.Close()
			return nil, err
		}
		watching++
	}
	if watching == 0 {
		fsWatcher.Close()
		return nil, fmt.Errorf("no watchable source directories among %v", roots)
	}

	return w, nil
}

// Changes returns the batch channel. Each batch is a deduplicated,
// ordered list of changed relative-to-root paths.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Start runs the event loop until the context is cancelled. It blocks;
// run it in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	defer w.watcher.Close()
	defer close(w.changes)

	var pending []string
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New subdirectories join the watch set.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.Warn("could not watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
				if !strings.HasSuffix(event.Name, w.ext) {
					continue
				}
			}
			pending = append(pending, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			batch := dedupe(pending)
			pending = nil
			timerCh = nil
			w.log.Info("source change detected", "files", len(batch))
			select {
			case w.changes <- batch:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("filesystem watcher error", "error", err)
		}
	}
}

// relevant filters events down to writes of source files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if event.Op&fsnotify.Create != 0 {
		// Could be a directory; decided in the event loop.
		return true
	}
	return strings.HasSuffix(event.Name, w.ext)
}

// addRecursive registers root and every subdirectory with the
// underlying watcher. Hidden directories are skipped.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != filepath.Base(root) && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// dedupe preserves first-seen order while dropping repeats.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
