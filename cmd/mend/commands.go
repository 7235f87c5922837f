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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianMend/services/repair/llm"
)

// --- Global Command Variables ---
var (
	projectRoot string
	modelFlag   string
	extFlag     string
	testDirFlag string
	mainDirFlag string
	testCommand string
	logLevel    string
	quietFlag   bool

	rootCmd = &cobra.Command{
		Use:   "mend",
		Short: "An AI repair loop for failing test suites",
		Long: `Mend runs your project's test suite, sends the failures and the
relevant source files to an AI model, applies the generated fix, and
retests, looping under your control until the suite passes.`,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Start an interactive repair session on a project",
		RunE:  runSession, // Defined in main.go
	}

	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "List the supported model identifiers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range llm.KnownModels() {
				family, _ := llm.FamilyFor(m)
				fmt.Printf("%-20s %s\n", m, family)
			}
		},
	}
)

func init() {
	runCmd.Flags().StringVarP(&projectRoot, "project", "p", "", "project root directory (required)")
	runCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model identifier (see 'mend models')")
	runCmd.Flags().StringVar(&extFlag, "ext", "", "source file extension, with leading dot")
	runCmd.Flags().StringVar(&testDirFlag, "test-dir", "", "test-source root, relative to the project")
	runCmd.Flags().StringVar(&mainDirFlag, "main-dir", "", "main-source root, relative to the project")
	runCmd.Flags().StringVar(&testCommand, "test-command", "", "test invocation, space separated")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, or error")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress stderr logging")
	_ = runCmd.MarkFlagRequired("project")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modelsCmd)
}

// validateModel rejects identifiers outside the allow-list with a usage
// message rather than falling through to the selector's default.
func validateModel(model string) error {
	if !llm.IsKnownModel(model) {
		return fmt.Errorf("unknown model %q; supported models: %s",
			model, strings.Join(llm.KnownModels(), ", "))
	}
	return nil
}
