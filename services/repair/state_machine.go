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
	"fmt"
	"sync"
)

// CycleState is one phase of a repair cycle.
type CycleState int

const (
	// StateIdle is the initial state before anything runs.
	StateIdle CycleState = iota

	// StateTesting is the pre-check test run. Skipped in forced mode.
	StateTesting

	// StatePassedEarly terminates the cycle: the pre-check already
	// passed, so no generation call is made.
	StatePassedEarly

	// StateExtractingFailures maps failing-test identifiers to files.
	StateExtractingFailures

	// StateCollectingContext snapshots the main-source tree.
	StateCollectingContext

	// StatePrompting renders the generation prompt.
	StatePrompting

	// StateGenerating is the single backend generation call.
	StateGenerating

	// StateApplying writes the generated code to disk.
	StateApplying

	// StateRetesting is the single post-apply test run.
	StateRetesting

	// StateDone terminates the cycle with the retest outcome.
	StateDone
)

// String returns the state name.
func (s CycleState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateTesting:
		return "TESTING"
	case StatePassedEarly:
		return "PASSED_EARLY"
	case StateExtractingFailures:
		return "EXTRACTING_FAILURES"
	case StateCollectingContext:
		return "COLLECTING_CONTEXT"
	case StatePrompting:
		return "PROMPTING"
	case StateGenerating:
		return "GENERATING"
	case StateApplying:
		return "APPLYING"
	case StateRetesting:
		return "RETESTING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// AllCycleStates returns every state, in pipeline order.
func AllCycleStates() []CycleState {
	return []CycleState{
		StateIdle, StateTesting, StatePassedEarly, StateExtractingFailures,
		StateCollectingContext, StatePrompting, StateGenerating,
		StateApplying, StateRetesting, StateDone,
	}
}

// StateMachine enforces valid transitions for a repair cycle.
//
// The transition graph:
//
//	IDLE → TESTING                       : Non-forced cycle start
//	IDLE → EXTRACTING_FAILURES           : Forced cycle, pre-check skipped
//	TESTING → PASSED_EARLY               : Pre-check passed, stop here
//	TESTING → EXTRACTING_FAILURES        : Pre-check failed
//	EXTRACTING_FAILURES → COLLECTING_CONTEXT
//	COLLECTING_CONTEXT → PROMPTING
//	PROMPTING → GENERATING
//	GENERATING → APPLYING
//	APPLYING → RETESTING
//	RETESTING → DONE                     : Outcome recorded, pass or fail
//
// No state is retried; each cycle makes exactly one generation call and
// one application attempt. Looping belongs to the session controller.
//
// Thread Safety:
//
//	StateMachine is safe for concurrent use.
type StateMachine struct {
	mu sync.RWMutex

	transitions map[CycleState]map[CycleState]bool
}

// NewStateMachine creates a state machine with all valid transitions.
func NewStateMachine() *StateMachine {
	sm := &StateMachine{
		transitions: make(map[CycleState]map[CycleState]bool),
	}

	for _, state := range AllCycleStates() {
		sm.transitions[state] = make(map[CycleState]bool)
	}

	sm.addTransition(StateIdle, StateTesting)
	sm.addTransition(StateIdle, StateExtractingFailures)

	sm.addTransition(StateTesting, StatePassedEarly)
	sm.addTransition(StateTesting, StateExtractingFailures)

	sm.addTransition(StateExtractingFailures, StateCollectingContext)
	sm.addTransition(StateCollectingContext, StatePrompting)
	sm.addTransition(StatePrompting, StateGenerating)
	sm.addTransition(StateGenerating, StateApplying)
	sm.addTransition(StateApplying, StateRetesting)
	sm.addTransition(StateRetesting, StateDone)

	return sm
}

// addTransition registers a valid transition.
func (sm *StateMachine) addTransition(from, to CycleState) {
	sm.transitions[from][to] = true
}

// CanTransition reports whether from → to is valid.
//
// Thread Safety: This method is safe for concurrent use.
func (sm *StateMachine) CanTransition(from, to CycleState) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if toMap, ok := sm.transitions[from]; ok {
		return toMap[to]
	}
	return false
}

// Transition validates from → to and returns the new state.
//
// Outputs:
//
//	CycleState - The target state if the transition is valid
//	error - ErrInvalidTransition otherwise
func (sm *StateMachine) Transition(from, to CycleState) (CycleState, error) {
	if !sm.CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// Terminal reports whether a state ends the cycle.
func (s CycleState) Terminal() bool {
	return s == StatePassedEarly || s == StateDone
}
