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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/awnumar/memguard"
)

// ErrMissingCredential indicates no credential is configured for the
// provider family the selected model requires. This is a fatal
// precondition: a cycle must not proceed without it, and it is checked
// before any project file is read.
var ErrMissingCredential = errors.New("no API credential configured for provider family")

// credentialEnvVars lists the environment variables probed per family,
// in order.
var credentialEnvVars = map[Family][]string{
	FamilyOpenAI:    {"OPENAI_API_KEY"},
	FamilyAnthropic: {"ANTHROPIC_API_KEY"},
	FamilyGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Credentials maps provider families to their API keys.
//
// Keys are held in memguard enclaves so the plaintext never sits in an
// ordinary heap allocation longer than a single request construction.
//
// Thread Safety: Credentials is immutable after LoadCredentials.
type Credentials struct {
	keys map[Family]*memguard.Enclave
}

// LoadCredentials reads every configured credential from the
// environment. Families without a key are simply absent; the check
// happens at selection time against the model actually in use.
func LoadCredentials() *Credentials {
	creds := &Credentials{keys: make(map[Family]*memguard.Enclave)}

	for family, envVars := range credentialEnvVars {
		for _, name := range envVars {
			if value := strings.TrimSpace(os.Getenv(name)); value != "" {
				creds.keys[family] = memguard.NewEnclave([]byte(value))
				break
			}
		}
	}

	return creds
}

// Has reports whether a credential exists for the family.
func (c *Credentials) Has(family Family) bool {
	_, ok := c.keys[family]
	return ok
}

// Key returns the plaintext credential for the family.
//
// Outputs:
//
//	string - The API key
//	error - ErrMissingCredential if no key is configured
//
// The returned string is an ordinary Go string; callers pass it straight
// into the provider client constructor and must not retain it.
func (c *Credentials) Key(family Family) (string, error) {
	enclave, ok := c.keys[family]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, family)
	}

	buf, err := enclave.Open()
	if err != nil {
		return "", fmt.Errorf("opening credential enclave for %s: %w", family, err)
	}
	defer buf.Destroy()

	// Copy out: the buffer's own backing memory is wiped on Destroy.
	return string(buf.Bytes()), nil
}
