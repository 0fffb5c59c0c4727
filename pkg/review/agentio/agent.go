// Package agentio defines the abstract boundary between the core pipeline
// and a concrete LLM client. The core never imports a model adapter
// directly; it only calls this interface.
package agentio

import (
	"context"
	"errors"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// ErrCancelScope is the sentinel a model adapter's Output.Cleanup should
// wrap when a nested cancellation region's teardown fails after the
// adapter already produced a usable result. The runner swallows exactly
// this error when a result was already observed and propagates it
// otherwise.
var ErrCancelScope = errors.New("cancel scope cleanup error")

// Usage reports how many request turns and tokens an agent invocation
// consumed, when the adapter exposes that information.
type Usage struct {
	Turns        int
	InputTokens  int
	OutputTokens int
	HasCost      bool
}

// Output is the structured result of one agent invocation. The runner only
// ever reads Issues; it never interprets OutputSchemaRef itself — that tag
// exists purely for the adapter to pick the right schema to decode into.
type Output struct {
	Issues []model.ReviewIssue
	Usage  Usage
	// Cleanup, when non-nil, is invoked by the runner immediately after
	// Run returns. It models an adapter's own post-call teardown (closing
	// a nested cancellation scope, releasing a session) that can fail
	// independently of whether Run itself produced a usable result.
	Cleanup func() error
}

// Agent is the abstract function from an execution context to a structured
// output. A concrete model adapter (never part of this core) implements
// it. Run must honor ctx's deadline and must not retry internally past a
// single usage-limit budget — the Agent Runner owns both budgets.
type Agent interface {
	Run(ctx context.Context, execCtx model.AgentExecutionContext) (Output, error)
}

// AgentFunc adapts a plain function to the Agent interface, mirroring the
// common http.HandlerFunc idiom — handy for stub/test adapters.
type AgentFunc func(ctx context.Context, execCtx model.AgentExecutionContext) (Output, error)

func (f AgentFunc) Run(ctx context.Context, execCtx model.AgentExecutionContext) (Output, error) {
	return f(ctx, execCtx)
}

// ErrUsageLimitExceeded is returned by an Agent implementation when it hit
// its own internal turn-count guard before returning, so the runner can
// classify the outcome as Truncated rather than Error.
type ErrUsageLimitExceeded struct {
	MaxTurns int
	// Issues carries any partial findings the adapter accumulated before
	// hitting the limit, when it's able to report them.
	Issues []model.ReviewIssue
}

func (e *ErrUsageLimitExceeded) Error() string {
	return "agent usage limit exceeded"
}
