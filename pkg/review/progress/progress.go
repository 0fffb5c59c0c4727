// Package progress is the operator-facing progress surface: a live table
// on stderr when it's a TTY, plain lines otherwise. The engine drives it
// through the Reporter interface; the report itself goes to stdout and is
// never routed through here.
package progress

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Reporter receives pipeline progress events. Implementations must be safe
// for concurrent use — the parallel executor finishes agents from sibling
// goroutines.
type Reporter interface {
	SelectorStarted()
	SelectorFinished(selected []string, err error)
	AgentStarted(name string, phase model.Phase)
	AgentFinished(result model.AgentResult)
	// Close releases the reporter's terminal state (the live view's
	// alternate rendering loop). Must be called on every exit path.
	Close()
}

// Noop discards every event. The engine falls back to it when the caller
// wires no reporter.
type Noop struct{}

func (Noop) SelectorStarted()                     {}
func (Noop) SelectorFinished(_ []string, _ error) {}
func (Noop) AgentStarted(_ string, _ model.Phase) {}
func (Noop) AgentFinished(_ model.AgentResult)    {}
func (Noop) Close()                               {}

// New picks the live table when f is a terminal and the plain line
// reporter otherwise.
func New(f *os.File) Reporter {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return NewLive(f)
	}
	return NewPlain(f)
}

// AgentRunner mirrors executor.AgentRunner structurally so this package
// can decorate a runner without importing the executor.
type AgentRunner interface {
	Run(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult
}

// WrapRunner decorates inner so every agent run reports its start and its
// classified result to r. A nil or Noop reporter returns inner unchanged.
func WrapRunner(inner AgentRunner, r Reporter) AgentRunner {
	if r == nil {
		return inner
	}
	if _, ok := r.(Noop); ok {
		return inner
	}
	return &reportingRunner{inner: inner, reporter: r}
}

type reportingRunner struct {
	inner    AgentRunner
	reporter Reporter
}

func (w *reportingRunner) Run(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult {
	w.reporter.AgentStarted(execCtx.AgentName, execCtx.Phase)
	result := w.inner.Run(ctx, execCtx)
	w.reporter.AgentFinished(result)
	return result
}
