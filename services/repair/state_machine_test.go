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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineTransitions(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		name  string
		from  CycleState
		to    CycleState
		valid bool
	}{
		{"idle starts testing", StateIdle, StateTesting, true},
		{"idle skips to extraction when forced", StateIdle, StateExtractingFailures, true},
		{"testing passes early", StateTesting, StatePassedEarly, true},
		{"testing proceeds to extraction", StateTesting, StateExtractingFailures, true},
		{"extraction to collection", StateExtractingFailures, StateCollectingContext, true},
		{"collection to prompting", StateCollectingContext, StatePrompting, true},
		{"prompting to generating", StatePrompting, StateGenerating, true},
		{"generating to applying", StateGenerating, StateApplying, true},
		{"applying to retesting", StateApplying, StateRetesting, true},
		{"retesting to done", StateRetesting, StateDone, true},

		{"no retry of generation", StateApplying, StateGenerating, false},
		{"no second apply", StateRetesting, StateApplying, false},
		{"passed early is terminal", StatePassedEarly, StateTesting, false},
		{"done is terminal", StateDone, StateTesting, false},
		{"no skipping prompting", StateCollectingContext, StateGenerating, false},
		{"idle cannot jump to done", StateIdle, StateDone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, sm.CanTransition(tt.from, tt.to))

			got, err := sm.Transition(tt.from, tt.to)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, got, "failed transition must not move")
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	for _, state := range AllCycleStates() {
		isTerminal := state == StatePassedEarly || state == StateDone
		assert.Equal(t, isTerminal, state.Terminal(), state.String())
	}
}

func TestStateStrings(t *testing.T) {
	for _, state := range AllCycleStates() {
		assert.NotEqual(t, "UNKNOWN", state.String())
	}
	assert.Equal(t, "UNKNOWN", CycleState(99).String())
}
