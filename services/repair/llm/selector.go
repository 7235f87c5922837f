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

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

// Selector constructs backends for model identifiers.
//
// Two failure philosophies deliberately coexist here as two distinct
// typed outcomes of one resolution step:
//
//   - an unmapped model identifier on the construction path is graceful
//     degradation: warn and fall back to the OpenAI family (the CLI has
//     already validated user input, so this only fires when the mapping
//     table and the allow-list drift apart);
//   - a missing credential for the required family is a fatal
//     precondition, surfaced as ErrMissingCredential before any project
//     file is read. The caller terminates the process, not this package.
type Selector struct {
	creds *Credentials
	log   *logging.Logger
}

// NewSelector creates a selector over the loaded credentials.
func NewSelector(creds *Credentials, log *logging.Logger) *Selector {
	return &Selector{creds: creds, log: log}
}

// Select resolves a model identifier to a ready backend.
//
// Inputs:
//
//	ctx - Used only by families whose clients dial at construction
//	model - The model identifier (already allow-list validated for
//	        user-facing commands)
//
// Outputs:
//
//	Client - The constructed backend
//	error - ErrMissingCredential (wrapped) or a construction failure
func (s *Selector) Select(ctx context.Context, model string) (Client, error) {
	family, ok := FamilyFor(model)
	if !ok {
		s.log.Warn("model has no provider family mapping, defaulting",
			"model", model, "fallback", FamilyOpenAI)
		family = FamilyOpenAI
	}

	key, err := s.creds.Key(family)
	if err != nil {
		return nil, fmt.Errorf("selecting backend for %q: %w", model, err)
	}

	switch family {
	case FamilyAnthropic:
		return NewAnthropicClient(key, model, s.log), nil
	case FamilyGemini:
		return NewGeminiClient(ctx, key, model, s.log)
	default:
		return NewOpenAIClient(key, model, s.log), nil
	}
}
