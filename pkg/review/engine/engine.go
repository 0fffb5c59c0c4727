// Package engine wires every other component into the top-level pipeline
// described in spec.md §4.11: it resolves content, prefetches context,
// runs the selector, executes the chosen agents, aggregates their
// findings, and determines the final exit code — while never letting an
// individual agent's failure, or a mid-run shutdown signal, crash the
// pipeline.
package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reviewfleet/reviewfleet/pkg/agentdef"
	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/aggregator"
	"github.com/reviewfleet/reviewfleet/pkg/review/catalog"
	"github.com/reviewfleet/reviewfleet/pkg/review/config"
	"github.com/reviewfleet/reviewfleet/pkg/review/difffilter"
	"github.com/reviewfleet/reviewfleet/pkg/review/execctx"
	"github.com/reviewfleet/reviewfleet/pkg/review/executor"
	"github.com/reviewfleet/reviewfleet/pkg/review/instruction"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/prefetch"
	"github.com/reviewfleet/reviewfleet/pkg/review/progress"
	"github.com/reviewfleet/reviewfleet/pkg/review/resolver"
	"github.com/reviewfleet/reviewfleet/pkg/review/runner"
	"github.com/reviewfleet/reviewfleet/pkg/review/selector"
	"github.com/reviewfleet/reviewfleet/pkg/review/telemetry"
)

// DefaultGracePeriod is the shutdown grace period from spec.md §5: the
// maximum time the engine waits for the executor to return cleanly after
// a shutdown signal before forcing through whatever results have been
// collected so far.
const DefaultGracePeriod = 3 * time.Second

// Dependencies are the external collaborators the engine is built around:
// the concrete LLM adapters (never part of the core itself) and the
// filesystem root the review runs against.
type Dependencies struct {
	WorkDir              string
	SelectorAgent        agentio.SelectorAgent
	ReviewAgent          agentio.Agent
	AggregatorAgent      agentio.AggregatorAgent
	GhFetcher            prefetch.GitHubFetcher
	CustomDefinitionsDir string // <project>/.hachimoku/agents, "" to disable
	Logger               *slog.Logger
	Progress             progress.Reporter // nil means no progress output
	GracePeriod          time.Duration     // 0 means DefaultGracePeriod
}

// Engine is built once and can run many reviews; each Run call is fully
// reentrant — it owns its own shutdown signal and installs/removes its own
// OS signal handlers, so concurrent Run calls never interfere.
type Engine struct {
	workDir     string
	catalog     *catalog.Catalog
	logger      *slog.Logger
	progress    progress.Reporter
	gracePeriod time.Duration

	agents           []model.AgentDefinition
	selectorDef      model.SelectorDefinition
	aggregatorDef    model.AggregatorDefinition
	definitionErrors []model.LoadError

	resolver   *resolver.Resolver
	prefetcher *prefetch.Prefetcher
	selector   *selector.Selector
	aggregator *aggregator.Aggregator
	runner     *runner.Runner
}

// New builds an Engine, loading the built-in and (if configured) custom
// agent/selector/aggregator definitions up front. Definition load failures
// do not prevent New from succeeding — they're recorded and surfaced on
// every report the engine later produces, same as a mid-run failure would
// be.
func New(deps Dependencies) (*Engine, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.GracePeriod <= 0 {
		deps.GracePeriod = DefaultGracePeriod
	}
	if deps.Progress == nil {
		deps.Progress = progress.Noop{}
	}

	builtinFS, err := agentdef.BuiltinSub()
	if err != nil {
		return nil, fmt.Errorf("engine: loading built-in definitions: %w", err)
	}

	agents, agentErrs := agentdef.LoadAgents(builtinFS, deps.CustomDefinitionsDir)
	selectorDef, selErr := loadSelectorDef(builtinFS, deps.CustomDefinitionsDir)
	aggregatorDef, aggErr := loadAggregatorDef(builtinFS, deps.CustomDefinitionsDir)

	loadErrors := agentErrs
	if selErr != nil {
		loadErrors = append(loadErrors, model.LoadError{File: agentdef.SelectorFilename, Cause: selErr.Error()})
	}
	if aggErr != nil {
		loadErrors = append(loadErrors, model.LoadError{File: agentdef.AggregatorFilename, Cause: aggErr.Error()})
	}

	cat := catalog.New(deps.WorkDir)

	return &Engine{
		workDir:          deps.WorkDir,
		catalog:          cat,
		logger:           deps.Logger,
		progress:         deps.Progress,
		gracePeriod:      deps.GracePeriod,
		agents:           agents,
		selectorDef:      selectorDef,
		aggregatorDef:    aggregatorDef,
		definitionErrors: loadErrors,
		resolver:         resolver.New(deps.WorkDir),
		prefetcher:       prefetch.New(deps.WorkDir, deps.GhFetcher, nil, deps.Logger),
		selector:         selector.New(deps.SelectorAgent),
		aggregator:       aggregator.New(deps.AggregatorAgent),
		runner:           runner.New(deps.ReviewAgent, deps.Logger),
	}, nil
}

func loadSelectorDef(builtinFS fs.FS, customDir string) (model.SelectorDefinition, error) {
	return agentdef.LoadSelector(builtinFS, customDir)
}

func loadAggregatorDef(builtinFS fs.FS, customDir string) (model.AggregatorDefinition, error) {
	return agentdef.LoadAggregator(builtinFS, customDir)
}

// Run executes exactly one review end to end. It never panics and never
// returns an error from the pipeline itself — every failure becomes either
// a concrete AgentResult variant or an EngineResult with exit 3.
func (e *Engine) Run(ctx context.Context, target model.ReviewTarget, overrides config.Overrides) model.EngineResult {
	ctx, span := telemetry.StartPipelineSpan(ctx, target)
	result := e.run(ctx, target, overrides)
	span.SetAttributes(telemetry.AttrExitCode.Int(result.ExitCode))
	span.End()
	return result
}

func (e *Engine) run(ctx context.Context, target model.ReviewTarget, overrides config.Overrides) model.EngineResult {
	loadErrors := append([]model.LoadError(nil), e.definitionErrors...)

	cfg, err := config.Resolve(e.workDir, overrides)
	if err != nil {
		return e.abort(loadErrors, "config", err)
	}

	// Each run builds its own execctx.Builder over the shared catalog, bound
	// to this run's fully-resolved Config.
	execBuild := execctx.New(e.catalog, cfg)

	agents := dropDisabledAgents(e.agents, cfg)

	target = truncateFileTarget(target, cfg.MaxFilesPerReview, e.logger)

	content, err := e.resolver.Resolve(ctx, target)
	if err != nil {
		return e.abort(loadErrors, "content-resolver", err)
	}

	prefetcher := e.prefetcher
	if len(cfg.Selector.ConventionFiles) > 0 {
		prefetcher = prefetch.New(e.workDir, prefetcher.Fetcher, cfg.Selector.ConventionFiles, e.logger)
	}
	prefetched, err := prefetcher.Prefetch(ctx, target, content)
	if err != nil {
		return e.abort(loadErrors, "prefetch", err)
	}

	changedPaths := relevantPaths(target, content)
	candidates := applicableAgents(agents, changedPaths, content)
	agentSummaries := toSummaries(candidates)

	e.progress.SelectorStarted()
	selOut, selErr := e.selector.Run(ctx, cfg, e.selectorDef, target, content, agentSummaries, prefetched)
	if selErr != nil {
		e.progress.SelectorFinished(nil, selErr)
		return e.abort(loadErrors, "selector", selErr)
	}
	e.progress.SelectorFinished(selOut.SelectedAgents, nil)

	if len(selOut.SelectedAgents) == 0 {
		return model.EngineResult{
			Report:   model.ReviewReport{LoadErrors: loadErrors},
			ExitCode: model.ExitSuccess,
		}
	}

	byName := make(map[string]model.AgentDefinition, len(candidates))
	for _, a := range candidates {
		byName[a.Name] = a
	}

	var selected []model.AgentDefinition
	for _, name := range selOut.SelectedAgents {
		if def, ok := byName[name]; ok {
			selected = append(selected, def)
		}
		// Unknown agent names are dropped silently, per spec.md §8.
	}

	var contexts []model.AgentExecutionContext
	for _, def := range selected {
		execCtx, err := execBuild.Build(target, content, def, selOut)
		if err != nil {
			loadErrors = append(loadErrors, model.LoadError{Name: def.Name, Cause: err.Error()})
			continue
		}
		contexts = append(contexts, execCtx)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bridges the OS signal context into the executors' own Shutdown type.
	// sigCtx.Done() closes at the latest when the deferred stop() above
	// runs, so this goroutine never outlives Run by more than an instant.
	shutdown := executor.NewShutdown()
	go func() {
		<-sigCtx.Done()
		shutdown.Set()
	}()

	sink := executor.NewSink()
	results := e.runExecutor(sigCtx, cfg, contexts, shutdown, sink)

	summary := model.ComputeSummary(results)
	report := model.ReviewReport{
		Results:    results,
		Summary:    summary,
		LoadErrors: loadErrors,
	}

	if !shutdown.IsSet() && aggregator.ShouldRun(cfg.Aggregation, results) {
		aggOut, aggErr := e.aggregator.Run(ctx, cfg, e.aggregatorDef, results)
		if aggErr != nil {
			report.AggregationError = aggErr.Error()
		} else {
			report.Aggregated = &aggOut
		}
	}

	return model.EngineResult{
		Report:   report,
		ExitCode: model.ExitCodeFor(results, summary),
	}
}

// runExecutor runs the configured executor strategy under the shutdown
// grace-period wrapper from spec.md §5: it waits up to e.gracePeriod after
// shutdown fires for the executor to return on its own, then gives up and
// returns whatever the shared sink has collected.
func (e *Engine) runExecutor(
	ctx context.Context,
	cfg *model.Config,
	contexts []model.AgentExecutionContext,
	shutdown *executor.Shutdown,
	sink *executor.Sink,
) []model.AgentResult {
	run := progress.WrapRunner(e.runner, e.progress)
	done := make(chan []model.AgentResult, 1)
	go func() {
		if cfg.Parallel {
			done <- executor.NewParallel(run).Run(ctx, contexts, shutdown, sink)
		} else {
			done <- executor.NewSequential(run).Run(ctx, contexts, shutdown, sink)
		}
	}()

	select {
	case results := <-done:
		return results
	case <-shutdown.Done():
		select {
		case results := <-done:
			return results
		case <-time.After(e.gracePeriod):
			e.logger.Warn("engine: shutdown grace period expired before executor returned; forcing partial results")
			return sink.Snapshot()
		}
	}
}

func (e *Engine) abort(loadErrors []model.LoadError, stage string, err error) model.EngineResult {
	e.logger.Error("engine: aborting pipeline", "stage", stage, "error", err)
	loadErrors = append(loadErrors, model.LoadError{File: stage, Cause: err.Error()})
	return model.EngineResult{
		Report:   model.ReviewReport{LoadErrors: loadErrors},
		ExitCode: model.ExitExecutionError,
	}
}

func dropDisabledAgents(agents []model.AgentDefinition, cfg *model.Config) []model.AgentDefinition {
	var out []model.AgentDefinition
	for _, a := range agents {
		if override, ok := cfg.AgentOverride(a.Name); ok && !override.Enabled {
			continue
		}
		out = append(out, a)
	}
	return out
}

// truncateFileTarget enforces config.max_files_per_review on an explicit
// File target, keeping the first maxFiles paths and logging what was
// dropped. Diff/PR targets aren't bounded here — their size is a property
// of the diff itself, not of an explicit file list.
func truncateFileTarget(target model.ReviewTarget, maxFiles int, logger *slog.Logger) model.ReviewTarget {
	ft, ok := target.(model.FileTarget)
	if !ok || maxFiles <= 0 || len(ft.Paths) <= maxFiles {
		return target
	}
	logger.Warn("engine: truncating file target to max_files_per_review",
		"requested", len(ft.Paths), "limit", maxFiles)
	ft.Paths = ft.Paths[:maxFiles]
	return ft
}

// relevantPaths returns the changed paths applicability rules should be
// evaluated against: the explicit path list for a File target, or the
// destination paths parsed out of the diff otherwise.
func relevantPaths(target model.ReviewTarget, content string) []string {
	if ft, ok := target.(model.FileTarget); ok {
		return ft.Paths
	}
	return difffilter.ChangedPaths(content)
}

// applicableAgents keeps only the agents whose ApplicabilityRule matches
// this change, so the selector only ever chooses among genuine candidates.
func applicableAgents(agents []model.AgentDefinition, changedPaths []string, payload string) []model.AgentDefinition {
	var out []model.AgentDefinition
	for _, a := range agents {
		if a.Applicability.Matches(changedPaths, payload) {
			out = append(out, a)
		}
	}
	return out
}

func toSummaries(agents []model.AgentDefinition) []instruction.AgentSummary {
	out := make([]instruction.AgentSummary, len(agents))
	for i, a := range agents {
		out[i] = instruction.AgentSummary{
			Name:          a.Name,
			Description:   a.Description,
			Phase:         a.Phase,
			Applicability: a.Applicability,
		}
	}
	return out
}
