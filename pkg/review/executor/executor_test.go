package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

type funcRunner struct {
	fn func(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult
}

func (f funcRunner) Run(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult {
	return f.fn(ctx, execCtx)
}

func TestGroupByPhase_OrderAndSorting(t *testing.T) {
	contexts := []model.AgentExecutionContext{
		{AgentName: "zebra", Phase: model.PhaseMain},
		{AgentName: "alpha", Phase: model.PhaseFinal},
		{AgentName: "beta", Phase: model.PhaseMain},
		{AgentName: "early-agent", Phase: model.PhaseEarly},
	}
	groups := GroupByPhase(contexts)
	require.Len(t, groups, 3)
	assert.Equal(t, "early-agent", groups[0][0].AgentName)
	assert.Equal(t, []string{"beta", "zebra"}, []string{groups[1][0].AgentName, groups[1][1].AgentName})
	assert.Equal(t, "alpha", groups[2][0].AgentName)
}

func TestGroupByPhase_EmptyPhasesSkipped(t *testing.T) {
	contexts := []model.AgentExecutionContext{{AgentName: "a", Phase: model.PhaseMain}}
	groups := GroupByPhase(contexts)
	require.Len(t, groups, 1)
}

func TestSequential_RunsAllInOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex
	runner := funcRunner{fn: func(ctx context.Context, ec model.AgentExecutionContext) model.AgentResult {
		mu.Lock()
		order = append(order, ec.AgentName)
		mu.Unlock()
		return model.SuccessResult{AgentName: ec.AgentName, Elapsed: time.Millisecond}
	}}

	contexts := []model.AgentExecutionContext{
		{AgentName: "b", Phase: model.PhaseMain},
		{AgentName: "a", Phase: model.PhaseEarly},
		{AgentName: "c", Phase: model.PhaseFinal},
	}
	results := NewSequential(runner).Run(context.Background(), contexts, NewShutdown(), NewSink())
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSequential_StopsOnShutdownBetweenAgents(t *testing.T) {
	shutdown := NewShutdown()
	var ran []string
	runner := funcRunner{fn: func(ctx context.Context, ec model.AgentExecutionContext) model.AgentResult {
		ran = append(ran, ec.AgentName)
		if ec.AgentName == "a" {
			shutdown.Set()
		}
		return model.SuccessResult{AgentName: ec.AgentName, Elapsed: time.Millisecond}
	}}

	contexts := []model.AgentExecutionContext{
		{AgentName: "a", Phase: model.PhaseEarly},
		{AgentName: "b", Phase: model.PhaseMain},
		{AgentName: "c", Phase: model.PhaseMain},
	}
	results := NewSequential(runner).Run(context.Background(), contexts, shutdown, NewSink())
	assert.Equal(t, []string{"a"}, ran)
	assert.Len(t, results, 1)
}

func TestSequential_ShutdownBeforeAnyAgentRunsYieldsEmpty(t *testing.T) {
	shutdown := NewShutdown()
	shutdown.Set()
	runner := funcRunner{fn: func(ctx context.Context, ec model.AgentExecutionContext) model.AgentResult {
		t.Fatal("should not run any agent")
		return nil
	}}
	contexts := []model.AgentExecutionContext{{AgentName: "a", Phase: model.PhaseEarly}}
	results := NewSequential(runner).Run(context.Background(), contexts, shutdown, NewSink())
	assert.Empty(t, results)
}

func TestParallel_RunsAllWithinPhaseConcurrently(t *testing.T) {
	runner := funcRunner{fn: func(ctx context.Context, ec model.AgentExecutionContext) model.AgentResult {
		return model.SuccessResult{AgentName: ec.AgentName, Elapsed: time.Millisecond}
	}}
	contexts := []model.AgentExecutionContext{
		{AgentName: "a", Phase: model.PhaseMain},
		{AgentName: "b", Phase: model.PhaseMain},
		{AgentName: "c", Phase: model.PhaseFinal},
	}
	results := NewParallel(runner).Run(context.Background(), contexts, NewShutdown(), NewSink())
	assert.Len(t, results, 3)
}

func TestParallel_ShutdownMidPhaseRetainsCompletedOnly(t *testing.T) {
	shutdown := NewShutdown()
	started := make(chan string, 3)

	runner := funcRunner{fn: func(ctx context.Context, ec model.AgentExecutionContext) model.AgentResult {
		started <- ec.AgentName
		if ec.AgentName == "slow" {
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			return model.SuccessResult{AgentName: ec.AgentName, Elapsed: time.Millisecond}
		}
		return model.SuccessResult{AgentName: ec.AgentName, Elapsed: time.Millisecond}
	}}

	contexts := []model.AgentExecutionContext{
		{AgentName: "fast1", Phase: model.PhaseMain},
		{AgentName: "fast2", Phase: model.PhaseMain},
		{AgentName: "slow", Phase: model.PhaseMain},
	}

	// Fire shutdown shortly after the phase starts, before "slow" returns.
	go func() {
		<-started
		<-started
		time.Sleep(20 * time.Millisecond)
		shutdown.Set()
	}()

	results := NewParallel(runner).Run(context.Background(), contexts, shutdown, NewSink())
	for _, r := range results {
		assert.NotEqual(t, "slow", r.Name())
	}
	assert.LessOrEqual(t, len(results), 2)
}

func TestParallel_SubsequentPhasesNotStartedAfterShutdown(t *testing.T) {
	shutdown := NewShutdown()
	var ranFinal bool
	var mu sync.Mutex

	runner := funcRunner{fn: func(ctx context.Context, ec model.AgentExecutionContext) model.AgentResult {
		if ec.Phase == model.PhaseMain {
			shutdown.Set()
		}
		if ec.Phase == model.PhaseFinal {
			mu.Lock()
			ranFinal = true
			mu.Unlock()
		}
		return model.SuccessResult{AgentName: ec.AgentName, Elapsed: time.Millisecond}
	}}

	contexts := []model.AgentExecutionContext{
		{AgentName: "a", Phase: model.PhaseMain},
		{AgentName: "b", Phase: model.PhaseFinal},
	}
	NewParallel(runner).Run(context.Background(), contexts, shutdown, NewSink())
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ranFinal)
}
