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
	"sync"
)

// MockClient is a test backend that records calls and replays canned
// responses.
//
// Thread Safety: MockClient is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// ModelName is reported by Model().
	ModelName string

	// FamilyName is reported by Family().
	FamilyName Family

	// Response is returned from every GenerateCode call.
	Response string

	// Err, when non-nil, is returned instead of Response.
	Err error

	// Prompts records every prompt passed to GenerateCode, in order.
	Prompts []string

	// SystemPrompts records every system prompt, in order.
	SystemPrompts []string
}

// GenerateCode implements the Client interface.
func (m *MockClient) GenerateCode(ctx context.Context, prompt, workDir, systemPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.SystemPrompts = append(m.SystemPrompts, systemPrompt)

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Family implements the Client interface.
func (m *MockClient) Family() Family {
	if m.FamilyName == "" {
		return FamilyOpenAI
	}
	return m.FamilyName
}

// Model implements the Client interface.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock"
	}
	return m.ModelName
}

// Calls returns the number of generation calls made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
