// Package telemetry instruments the review pipeline with OpenTelemetry
// traces: one span per pipeline run and one per agent invocation. The
// package only talks to the global TracerProvider — a caller that wants
// spans exported installs a provider via Setup (or its own); everything
// else degrades to no-op spans.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

const scopeName = "github.com/reviewfleet/reviewfleet/pkg/review"

// Span attribute keys used across the pipeline.
var (
	AttrTargetMode     = attribute.Key("review.target.mode")
	AttrPhase          = attribute.Key("review.phase")
	AttrPhaseAgents    = attribute.Key("review.phase.agents")
	AttrAgentName      = attribute.Key("review.agent.name")
	AttrAgentPhase     = attribute.Key("review.agent.phase")
	AttrAgentModel     = attribute.Key("review.agent.model")
	AttrResultStatus   = attribute.Key("review.result.status")
	AttrIssueCount     = attribute.Key("review.result.issues")
	AttrSelectedAgents = attribute.Key("review.selected_agents")
	AttrExitCode       = attribute.Key("review.exit_code")
)

// Setup installs a process-global SDK TracerProvider tagged with
// serviceName and returns its shutdown hook. Callers pass exporter span
// processors through opts; with none, spans are recorded but go nowhere,
// which is the right default for a CLI run without a collector.
func Setup(serviceName string, opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	res := sdkresource.NewSchemaless(attribute.String("service.name", serviceName))
	opts = append(opts, sdktrace.WithResource(res))
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// Tracer returns the pipeline's tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(scopeName)
}

// StartPipelineSpan opens the root span for one engine run.
func StartPipelineSpan(ctx context.Context, target model.ReviewTarget) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "review.pipeline", trace.WithAttributes(
		AttrTargetMode.String(target.Mode()),
	))
}

// StartPhaseSpan opens the span covering one scheduling phase.
func StartPhaseSpan(ctx context.Context, phase model.Phase, agents int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "review.phase", trace.WithAttributes(
		AttrPhase.String(phase.String()),
		AttrPhaseAgents.Int(agents),
	))
}

// StartAgentSpan opens the span for one agent invocation, carrying the
// resolved identity of the run.
func StartAgentSpan(ctx context.Context, execCtx model.AgentExecutionContext) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "review.agent.run", trace.WithAttributes(
		AttrAgentName.String(execCtx.AgentName),
		AttrAgentPhase.String(execCtx.Phase.String()),
		AttrAgentModel.String(execCtx.Model),
	))
}

// EndAgentSpan records result's classification on span and ends it. Error
// results mark the span failed; Timeout and Truncated are recorded as
// ordinary outcomes since the pipeline treats them as data, not faults.
func EndAgentSpan(span trace.Span, result model.AgentResult) {
	span.SetAttributes(
		AttrResultStatus.String(result.Status()),
		AttrIssueCount.Int(len(model.IssuesOf(result))),
	)
	if er, ok := result.(model.ErrorResult); ok {
		span.SetStatus(codes.Error, er.ErrorMessage)
	}
	span.End()
}
