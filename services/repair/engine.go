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
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
)

// TestRunner runs the project test suite and summarizes failures.
// Implemented by runner.MavenRunner.
type TestRunner interface {
	// Run executes the suite and returns pass/fail, the raw output, and
	// an error only when the subprocess could not run.
	Run(projectRoot, reportPath string) (bool, string, error)

	// Summarize extracts ordered failing-test identifiers from raw
	// output.
	Summarize(output string) []string
}

// CodeApplier writes generated code to the project tree. Implemented by
// apply.Applier.
type CodeApplier interface {
	// Apply parses generated text and writes every declared file,
	// returning the relative paths written.
	Apply(generated string) ([]string, error)
}

// Engine drives one repair cycle at a time through the state machine.
//
// Each cycle makes at most one generation call and one apply attempt.
// Retrying and looping belong to the session controller; the engine
// reports outcomes and stops.
//
// Thread Safety: RunCycle must not be called concurrently.
type Engine struct {
	machine   *StateMachine
	extractor *FailureExtractor
	collector *ContextCollector
	assembler *PromptAssembler
	runner    TestRunner
	applier   CodeApplier
	metrics   *Metrics
	log       *logging.Logger

	// projectRoot and reportPath parameterize every test run.
	projectRoot string
	reportPath  string
}

// NewEngine wires the cycle engine.
func NewEngine(
	extractor *FailureExtractor,
	collector *ContextCollector,
	assembler *PromptAssembler,
	testRunner TestRunner,
	applier CodeApplier,
	metrics *Metrics,
	projectRoot, reportPath string,
	log *logging.Logger,
) *Engine {
	return &Engine{
		machine:     NewStateMachine(),
		extractor:   extractor,
		collector:   collector,
		assembler:   assembler,
		runner:      testRunner,
		applier:     applier,
		metrics:     metrics,
		log:         log,
		projectRoot: projectRoot,
		reportPath:  reportPath,
	}
}

// RunCycle executes one full repair cycle.
//
// Non-forced cycles start with a pre-check test run and stop early if it
// passes. Forced cycles skip the pre-check and reuse the failure list
// and test output recorded on the session state by the previous run.
//
// Inputs:
//
//	ctx - Cancels the generation call
//	st - Session state; LastFailures and LastTestOutput are updated
//	forced - Skip the pre-check and always generate
//
// Outputs:
//
//	*CycleResult - Always non-nil when error is nil
//	error - Wraps ErrTestRunFailed, ErrGenerationFailed, or
//	        ErrApplyFailed; the session continues after cycle errors
func (e *Engine) RunCycle(ctx context.Context, st *SessionState, forced bool) (*CycleResult, error) {
	start := time.Now()
	result := &CycleResult{CycleID: uuid.NewString()}
	cycleLog := e.log.With("cycle_id", result.CycleID, "forced", forced)

	state := StateIdle
	var err error
	var failures []string
	testOutput := st.LastTestOutput

	if forced {
		if state, err = e.machine.Transition(state, StateExtractingFailures); err != nil {
			return nil, err
		}
		failures = st.LastFailures
		cycleLog.Info("forced cycle, reusing last failures", "failures", len(failures))
	} else {
		if state, err = e.machine.Transition(state, StateTesting); err != nil {
			return nil, err
		}
		passed, output, runErr := e.runner.Run(e.projectRoot, e.reportPath)
		if runErr != nil {
			e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), "error").Inc()
			return nil, fmt.Errorf("%w: %v", ErrTestRunFailed, runErr)
		}
		testOutput = output
		st.LastTestOutput = output

		if passed {
			if _, err = e.machine.Transition(state, StatePassedEarly); err != nil {
				return nil, err
			}
			result.Passed = true
			result.PassedEarly = true
			result.TestOutput = output
			st.LastFailures = nil
			e.metrics.EarlyPassesTotal.Inc()
			e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), "passed_early").Inc()
			e.metrics.CycleDuration.Observe(time.Since(start).Seconds())
			cycleLog.Info("suite already passing, cycle complete")
			return result, nil
		}

		if state, err = e.machine.Transition(state, StateExtractingFailures); err != nil {
			return nil, err
		}
		failures = e.runner.Summarize(output)
		st.LastFailures = failures
		cycleLog.Info("pre-check failed", "failures", len(failures))
	}

	testFiles := e.extractor.Extract(failures)

	if state, err = e.machine.Transition(state, StateCollectingContext); err != nil {
		return nil, err
	}
	sources, err := e.collector.Collect()
	if err != nil {
		e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), "error").Inc()
		return nil, err
	}

	if state, err = e.machine.Transition(state, StatePrompting); err != nil {
		return nil, err
	}
	// Failing test files lead; the main-source snapshot follows.
	files := append(append([]SourceFile{}, testFiles...), sources...)
	prompt := e.assembler.Assemble(testOutput, files, st.BuildDescriptor, st.Hints)
	if logErr := e.assembler.LogPrompt(result.CycleID, st.Model, prompt); logErr != nil {
		cycleLog.Warn("could not record prompt in session log", "error", logErr)
	}

	if state, err = e.machine.Transition(state, StateGenerating); err != nil {
		return nil, err
	}
	cycleLog.Info("requesting generation", "model", st.Model, "prompt_bytes", len(prompt))
	generated, err := st.Backend.GenerateCode(ctx, prompt, e.projectRoot, SystemPrompt)
	result.Generated = true
	e.metrics.GenerationsTotal.WithLabelValues(string(st.Backend.Family())).Inc()
	if err != nil {
		e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if state, err = e.machine.Transition(state, StateApplying); err != nil {
		return nil, err
	}
	written, err := e.applier.Apply(generated)
	if err != nil {
		e.metrics.ApplyFailuresTotal.Inc()
		e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrApplyFailed, err)
	}
	cycleLog.Info("applied generated code", "files", written)

	if state, err = e.machine.Transition(state, StateRetesting); err != nil {
		return nil, err
	}
	passed, output, runErr := e.runner.Run(e.projectRoot, e.reportPath)
	if runErr != nil {
		e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTestRunFailed, runErr)
	}
	st.LastTestOutput = output
	if passed {
		st.LastFailures = nil
	} else {
		st.LastFailures = e.runner.Summarize(output)
	}

	if _, err = e.machine.Transition(state, StateDone); err != nil {
		return nil, err
	}
	result.Passed = passed
	result.TestOutput = output

	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	e.metrics.CyclesTotal.WithLabelValues(boolLabel(forced), outcome).Inc()
	e.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	cycleLog.Info("cycle complete", "passed", passed)
	return result, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
