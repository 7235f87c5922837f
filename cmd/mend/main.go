// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command mend is the interactive AI repair loop CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianMend/cmd/mend/config"
	"github.com/AleutianAI/AleutianMend/pkg/logging"
	"github.com/AleutianAI/AleutianMend/services/repair"
	"github.com/AleutianAI/AleutianMend/services/repair/apply"
	"github.com/AleutianAI/AleutianMend/services/repair/llm"
	"github.com/AleutianAI/AleutianMend/services/repair/runner"
	"github.com/AleutianAI/AleutianMend/services/repair/watch"
	"github.com/AleutianAI/AleutianMend/services/repair/workspace"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runSession wires and runs one interactive repair session.
func runSession(cmd *cobra.Command, args []string) error {
	if err := config.Load(); err != nil {
		return err
	}
	cfg := config.Global.Merged(config.Overrides{
		Model:       modelFlag,
		TestCommand: strings.Fields(testCommand),
		TestDir:     testDirFlag,
		MainDir:     mainDirFlag,
		Ext:         extFlag,
		LogLevel:    logLevel,
	})

	if err := validateModel(cfg.DefaultModel); err != nil {
		return err
	}
	model := cfg.DefaultModel

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("project root is not a directory: %s", projectRoot)
	}

	log := logging.New(logging.Config{
		Level:   parseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "mend",
		Quiet:   quietFlag,
	})
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds := llm.LoadCredentials()
	selector := llm.NewSelector(creds, log)
	ws := workspace.New(absRoot, cfg.ScratchDir)

	backend, buildDescriptor, err := prepareSession(ctx, selector, ws, model)
	if err != nil {
		return err
	}

	metrics := repair.DefaultMetrics()
	testRunner := runner.NewMavenRunner(cfg.TestCommand, log)
	extractor := repair.NewFailureExtractor(absRoot, cfg.TestDir, cfg.Ext)
	collector := repair.NewContextCollector(absRoot, cfg.MainDir, cfg.Ext)
	assembler := repair.NewPromptAssembler(ws.SessionLogPath())
	applier := apply.NewApplier(absRoot, ws.ArchiveDir(), cfg.Ext, log)

	engine := repair.NewEngine(extractor, collector, assembler, testRunner,
		applier, metrics, absRoot, ws.TestReportPath(), log)

	watchRoots := []string{
		filepath.Join(absRoot, cfg.MainDir),
		filepath.Join(absRoot, cfg.TestDir),
	}
	debounce := time.Duration(cfg.DebounceMillis) * time.Millisecond
	var changeSource repair.ChangeSource
	if watcher, err := watch.NewWatcher(watchRoots, cfg.Ext, debounce, log); err != nil {
		log.Warn("watch mode unavailable", "error", err)
	} else {
		changeSource = watcher
	}

	session := repair.NewSessionController(engine, selector, changeSource, log)
	st := repair.NewSessionState(model, backend, buildDescriptor)

	log.Info("session starting", "session_id", st.SessionID, "model", model, "project", absRoot)
	return session.Run(ctx, st)
}

// prepareSession resolves the backend, then prepares the scratch dir
// and reads the build descriptor. The order is a precondition: a
// missing credential must surface before any project file is created
// or read.
func prepareSession(ctx context.Context, selector repair.BackendSelector, ws *workspace.Workspace, model string) (llm.Client, string, error) {
	backend, err := selector.Select(ctx, model)
	if err != nil {
		return nil, "", err
	}

	if err := ws.Prepare(); err != nil {
		return nil, "", err
	}
	buildDescriptor, err := ws.ReadBuildDescriptor()
	if err != nil {
		return nil, "", err
	}

	return backend, buildDescriptor, nil
}

// parseLevel maps a config string to a logging level, defaulting to
// Info on anything unrecognized.
func parseLevel(s string) logging.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
