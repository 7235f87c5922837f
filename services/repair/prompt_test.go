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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	a := NewPromptAssembler(filepath.Join(t.TempDir(), "session.log"))

	files := []SourceFile{
		{RelPath: "src/test/java/org/ex/ThingTest.java", Content: "class ThingTest {}"},
		{RelPath: "src/main/java/org/ex/Thing.java", Content: "class Thing {}"},
	}

	t.Run("contains all sections", func(t *testing.T) {
		prompt := a.Assemble("1 test failed", files, "<project/>", nil)

		assert.Contains(t, prompt, "1 test failed")
		assert.Contains(t, prompt, "<project/>")
		assert.Contains(t, prompt, "File: src/test/java/org/ex/ThingTest.java\nclass ThingTest {}")
		assert.Contains(t, prompt, "File: src/main/java/org/ex/Thing.java\nclass Thing {}")
		assert.NotContains(t, prompt, "Additional instructions")
	})

	t.Run("file order is preserved", func(t *testing.T) {
		prompt := a.Assemble("out", files, "pom", nil)
		testIdx := strings.Index(prompt, "ThingTest.java")
		mainIdx := strings.Index(prompt, "Thing.java\nclass Thing")
		assert.Less(t, testIdx, mainIdx)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := a.Assemble("out", files, "pom", []string{"h"})
		second := a.Assemble("out", files, "pom", []string{"h"})
		assert.Equal(t, first, second)
	})
}

func TestAssembleHints(t *testing.T) {
	a := NewPromptAssembler(filepath.Join(t.TempDir(), "session.log"))

	t.Run("single hint on one trailing line", func(t *testing.T) {
		prompt := a.Assemble("out", nil, "pom", []string{"use streams"})
		assert.True(t, strings.HasSuffix(prompt,
			"\nAdditional instructions from the developer: use streams"))
	})

	t.Run("accumulated hints joined in insertion order", func(t *testing.T) {
		st := NewSessionState("gpt-4o", nil, "pom")
		for i := 1; i <= 4; i++ {
			st.AddHint(fmt.Sprintf("hint %d", i))
		}

		prompt := a.Assemble("out", nil, "pom", st.Hints)
		assert.Contains(t, prompt,
			"Additional instructions from the developer: hint 1; hint 2; hint 3; hint 4")
		assert.Equal(t, 1, strings.Count(prompt, "Additional instructions"))
	})

	t.Run("hints survive a model switch", func(t *testing.T) {
		st := NewSessionState("gpt-4o", nil, "pom")
		st.AddHint("keep the public API")
		st.SwitchBackend("claude-3-5-sonnet", nil)

		prompt := a.Assemble("out", nil, "pom", st.Hints)
		assert.Contains(t, prompt, "keep the public API")
	})
}

func TestLogPrompt(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "session.log")
	a := NewPromptAssembler(logPath)

	require.NoError(t, a.LogPrompt("cycle-1", "gpt-4o", "first prompt"))
	require.NoError(t, a.LogPrompt("cycle-2", "claude-3-5-sonnet", "second prompt"))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)

	// Append-only: both entries present, in order, with headers.
	assert.Contains(t, content, "cycle=cycle-1 model=gpt-4o")
	assert.Contains(t, content, "first prompt")
	assert.Contains(t, content, "cycle=cycle-2 model=claude-3-5-sonnet")
	assert.Less(t, strings.Index(content, "first prompt"), strings.Index(content, "second prompt"))
}
