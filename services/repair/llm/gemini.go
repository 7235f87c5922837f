// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

const geminiMaxTokens = 8192

// GeminiClient generates code through the Google Gemini API.
type GeminiClient struct {
	llm   *googleai.GoogleAI
	model string
	log   *logging.Logger
}

// NewGeminiClient creates a Gemini-family backend.
//
// The underlying client dials Google at construction time, so a context
// is required here, unlike the other families.
func NewGeminiClient(ctx context.Context, apiKey, model string, log *logging.Logger) (*GeminiClient, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{llm: llm, model: model, log: log}, nil
}

// GenerateCode implements the Client interface.
func (g *GeminiClient) GenerateCode(ctx context.Context, prompt, workDir, systemPrompt string) (string, error) {
	g.log.Debug("generating via gemini", "model", g.model, "work_dir", workDir, "prompt_bytes", len(prompt))

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := g.llm.GenerateContent(ctx, content, llms.WithMaxTokens(geminiMaxTokens))
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini returned no choices")
	}

	return resp.Choices[0].Content, nil
}

// Family implements the Client interface.
func (g *GeminiClient) Family() Family { return FamilyGemini }

// Model implements the Client interface.
func (g *GeminiClient) Model() string { return g.model }
