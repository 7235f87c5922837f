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

	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

// OpenAIClient generates code through the OpenAI chat-completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logging.Logger
}

// NewOpenAIClient creates an OpenAI-family backend.
func NewOpenAIClient(apiKey, model string, log *logging.Logger) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}
}

// GenerateCode implements the Client interface.
func (o *OpenAIClient) GenerateCode(ctx context.Context, prompt, workDir, systemPrompt string) (string, error) {
	o.log.Debug("generating via openai", "model", o.model, "work_dir", workDir, "prompt_bytes", len(prompt))

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	o.log.Debug("openai response received", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Family implements the Client interface.
func (o *OpenAIClient) Family() Family { return FamilyOpenAI }

// Model implements the Client interface.
func (o *OpenAIClient) Model() string { return o.model }
