// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the code-generation backend capability and one
// client per provider family.
//
// Three unrelated providers are treated uniformly behind a single
// interface; the selector maps a model identifier to its family and
// constructs the matching client.
package llm

import (
	"context"
	"sort"
)

// Family is the provider grouping a model identifier resolves to.
type Family string

const (
	// FamilyOpenAI covers the OpenAI chat-completion API surface.
	FamilyOpenAI Family = "openai"

	// FamilyAnthropic covers the Anthropic messages API surface.
	FamilyAnthropic Family = "anthropic"

	// FamilyGemini covers the Google Gemini API surface.
	FamilyGemini Family = "gemini"
)

// Client is the single capability every backend implements.
type Client interface {
	// GenerateCode sends the prompt and returns the raw generated text.
	//
	// Inputs:
	//
	//	ctx - Context for cancellation and timeout
	//	prompt - The fully assembled repair prompt
	//	workDir - The project root, for backends that need local context
	//	systemPrompt - The fixed system message
	//
	// Outputs:
	//
	//	string - Raw generated text (file blocks or a unified diff)
	//	error - Non-nil if the request failed
	GenerateCode(ctx context.Context, prompt, workDir, systemPrompt string) (string, error)

	// Family returns the provider family of this client.
	Family() Family

	// Model returns the model identifier in use.
	Model() string
}

// modelFamilies is the fixed allow-list: every known model identifier
// maps to exactly one family. Unknown identifiers are rejected at CLI
// validation; the construction path warns and defaults instead (see
// Selector.Select).
var modelFamilies = map[string]Family{
	"gpt-4o":            FamilyOpenAI,
	"gpt-4o-mini":       FamilyOpenAI,
	"claude-3-5-sonnet": FamilyAnthropic,
	"claude-3-5-haiku":  FamilyAnthropic,
	"gemini-1.5-pro":    FamilyGemini,
	"gemini-1.5-flash":  FamilyGemini,
}

// FamilyFor looks up the provider family for a model identifier.
func FamilyFor(model string) (Family, bool) {
	family, ok := modelFamilies[model]
	return family, ok
}

// KnownModels returns the sorted model allow-list.
func KnownModels() []string {
	models := make([]string, 0, len(modelFamilies))
	for m := range modelFamilies {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// IsKnownModel reports whether the identifier is on the allow-list.
func IsKnownModel(model string) bool {
	_, ok := modelFamilies[model]
	return ok
}
