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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeUnifiedDiff(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "real diff",
			text: "--- a/App.java\n+++ b/App.java\n@@ -1,2 +1,2 @@\n-old\n+new\n context",
			want: true,
		},
		{
			name: "file blocks",
			text: "File: App.java\nclass App {}",
			want: false,
		},
		{
			name: "prose with dashes but no hunks",
			text: "--- analysis ---\nthe fix is simple",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeUnifiedDiff(tt.text))
		})
	}
}

func TestApplyUnifiedDiff(t *testing.T) {
	a, root, _ := newTestApplier(t)

	original := "class App {\n    int broken() {\n        return 4;\n    }\n}"
	target := filepath.Join(root, "src", "App.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte(original), 0644))

	patch := `--- a/src/App.java
+++ b/src/App.java
@@ -1,5 +1,5 @@
 class App {
     int broken() {
-        return 4;
+        return 3;
     }
 }`

	written, err := a.Apply(patch)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.FromSlash("src/App.java")}, written)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "class App {\n    int broken() {\n        return 3;\n    }\n}", string(data))
}

func TestApplyUnifiedDiffContextMismatch(t *testing.T) {
	a, root, _ := newTestApplier(t)

	target := filepath.Join(root, "App.java")
	require.NoError(t, os.WriteFile(target, []byte("completely different content"), 0644))

	patch := `--- a/App.java
+++ b/App.java
@@ -1,1 +1,1 @@
-expected line
+replacement`

	_, err := a.Apply(patch)
	require.Error(t, err)

	data, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "completely different content", string(data), "a failed patch must not modify the file")
}

func TestApplyUnifiedDiffNewFile(t *testing.T) {
	a, root, _ := newTestApplier(t)

	patch := `--- /dev/null
+++ b/src/New.java
@@ -0,0 +1,2 @@
+class New {
+}`

	written, err := a.Apply(patch)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.FromSlash("src/New.java")}, written)

	data, err := os.ReadFile(filepath.Join(root, "src", "New.java"))
	require.NoError(t, err)
	assert.Equal(t, "class New {\n}", string(data))
}
