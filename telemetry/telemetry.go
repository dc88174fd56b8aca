//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package telemetry holds the OpenTelemetry tracer used across ensemble.
// No exporter is wired here; the tracer resolves against the process-global
// otel tracer provider, which defaults to a no-op.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentName identifies ensemble spans to the tracer provider.
const InstrumentName = "github.com/ensembleworks/ensemble"

// Tracer is the tracer used for agent, team and provider spans.
var Tracer trace.Tracer = otel.Tracer(InstrumentName)

// Span attribute keys.
const (
	KeyAgentName = "ensemble.agent.name"
	KeyModelName = "ensemble.model.name"
	KeyTeamMode  = "ensemble.team.mode"
	KeyTaskCount = "ensemble.task.count"
)

// String builds a string span attribute.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Int builds an int span attribute.
func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}
