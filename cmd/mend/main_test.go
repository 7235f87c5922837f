// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
	"github.com/AleutianAI/AleutianMend/services/repair/llm"
	"github.com/AleutianAI/AleutianMend/services/repair/workspace"
)

func TestValidateModel(t *testing.T) {
	assert.NoError(t, validateModel("gpt-4o"))
	assert.NoError(t, validateModel("claude-3-5-sonnet"))
	assert.NoError(t, validateModel("gemini-1.5-flash"))

	err := validateModel("gpt-99")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "supported models")
}

func TestPrepareSessionMissingCredentialTouchesNoProjectFile(t *testing.T) {
	for _, name := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(name, "")
	}

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pom.xml"), []byte("<project/>"), 0644))

	log := logging.New(logging.Config{Quiet: true})
	selector := llm.NewSelector(llm.LoadCredentials(), log)
	ws := workspace.New(root, "")

	_, _, err := prepareSession(context.Background(), selector, ws, "gpt-4o")
	require.ErrorIs(t, err, llm.ErrMissingCredential)

	assert.NoDirExists(t, ws.ScratchDir, "scratch dir must not be created before credentials resolve")
}

func TestPrepareSessionWithCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pom.xml"), []byte("<project/>"), 0644))

	log := logging.New(logging.Config{Quiet: true})
	selector := llm.NewSelector(llm.LoadCredentials(), log)
	ws := workspace.New(root, "")

	backend, buildDescriptor, err := prepareSession(context.Background(), selector, ws, "gpt-4o")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", backend.Model())
	assert.Equal(t, "<project/>", buildDescriptor)
	assert.DirExists(t, ws.ArchiveDir())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.LevelDebug, parseLevel("debug"))
	assert.Equal(t, logging.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, logging.LevelWarn, parseLevel("warning"))
	assert.Equal(t, logging.LevelError, parseLevel("error"))
	assert.Equal(t, logging.LevelInfo, parseLevel("info"))
	assert.Equal(t, logging.LevelInfo, parseLevel("garbage"))
}
