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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianMend/services/repair/llm"
)

func TestMetricsCountCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CyclesTotal.WithLabelValues("false", "passed_early").Inc()
	m.CyclesTotal.WithLabelValues("true", "failed").Inc()
	m.EarlyPassesTotal.Inc()
	m.GenerationsTotal.WithLabelValues(string(llm.FamilyOpenAI)).Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("false", "passed_early")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("true", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EarlyPassesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("openai")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ApplyFailuresTotal))
}

func TestEngineRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	r := &fakeRunner{
		results: []fakeRun{
			{passed: false, output: "failing"},
			{passed: true, output: "OK"},
		},
		failures: []string{"testApp(org.ex.AppTest)"},
	}
	backend := &llm.MockClient{FamilyName: llm.FamilyAnthropic, Response: "File: x.java\nc"}
	engine := newTestEngine(t, r, &fakeApplier{})
	engine.metrics = NewMetrics(reg)
	st := NewSessionState("claude-3-5-sonnet", backend, "pom")

	_, err := engine.RunCycle(context.Background(), st, false)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(engine.metrics.GenerationsTotal.WithLabelValues("anthropic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(engine.metrics.CyclesTotal.WithLabelValues("false", "passed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(engine.metrics.EarlyPassesTotal))
}
