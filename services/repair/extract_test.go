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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwningClass(t *testing.T) {
	tests := []struct {
		name    string
		failure string
		want    string
	}{
		{
			name:    "method with class in parens",
			failure: "testFoo(org.ex.ThingTest)",
			want:    "org.ex.ThingTest",
		},
		{
			name:    "dotted path drops lowercase method",
			failure: "org.ex.OtherTest.testBar",
			want:    "org.ex.OtherTest",
		},
		{
			name:    "dotted path already a class",
			failure: "org.ex.OtherTest",
			want:    "org.ex.OtherTest",
		},
		{
			name:    "bare class name",
			failure: "ThingTest",
			want:    "ThingTest",
		},
		{
			name:    "bare lowercase single segment kept",
			failure: "testbar",
			want:    "testbar",
		},
		{
			name:    "parens win over dots",
			failure: "testFoo(org.ex.ThingTest).extra",
			want:    "org.ex.ThingTest",
		},
		{
			name:    "unclosed paren takes remainder",
			failure: "testFoo(org.ex.ThingTest",
			want:    "org.ex.ThingTest",
		},
		{
			name:    "empty parens",
			failure: "testFoo()",
			want:    "",
		},
		{
			name:    "empty string",
			failure: "",
			want:    "",
		},
		{
			name:    "nested class with dollar sign",
			failure: "testFoo(org.ex.ThingTest$Inner)",
			want:    "org.ex.ThingTest$Inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwningClass(tt.failure))
		})
	}
}

func TestExtract(t *testing.T) {
	root := t.TempDir()
	testDir := filepath.Join("src", "test", "java")

	thingPath := filepath.Join(root, testDir, "org", "ex", "ThingTest.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(thingPath), 0755))
	require.NoError(t, os.WriteFile(thingPath, []byte("class ThingTest {}"), 0644))

	x := NewFailureExtractor(root, testDir, ".java")

	t.Run("mixed shapes resolve to owning classes", func(t *testing.T) {
		files := x.Extract([]string{
			"testFoo(org.ex.ThingTest)",
			"org.ex.OtherTest.testBar",
		})
		require.Len(t, files, 2)

		assert.Equal(t, filepath.Join(testDir, "org", "ex", "ThingTest.java"), files[0].RelPath)
		assert.Equal(t, "class ThingTest {}", files[0].Content)

		assert.Equal(t, filepath.Join(testDir, "org", "ex", "OtherTest.java"), files[1].RelPath)
		assert.Empty(t, files[1].Content, "missing file should yield an empty placeholder")
	})

	t.Run("duplicates are kept in order", func(t *testing.T) {
		files := x.Extract([]string{
			"testFoo(org.ex.ThingTest)",
			"testBar(org.ex.ThingTest)",
		})
		require.Len(t, files, 2)
		assert.Equal(t, files[0].RelPath, files[1].RelPath)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, x.Extract(nil))
		assert.Empty(t, x.Extract([]string{}))
	})
}
