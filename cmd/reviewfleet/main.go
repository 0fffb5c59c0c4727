// reviewfleet orchestrates a fleet of LLM-driven code-review agents
// against a branch diff, a pull-request diff, or an explicit file set. The
// CLI layer here is deliberately thin: it resolves the positional target,
// folds flags and environment into config overrides, and hands both to
// the core engine.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reviewfleet/reviewfleet/pkg/review/config"
	"github.com/reviewfleet/reviewfleet/pkg/review/engine"
	"github.com/reviewfleet/reviewfleet/pkg/review/history"
	"github.com/reviewfleet/reviewfleet/pkg/review/llmproc"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/prefetch"
	"github.com/reviewfleet/reviewfleet/pkg/review/progress"
	"github.com/reviewfleet/reviewfleet/pkg/review/render"
	"github.com/reviewfleet/reviewfleet/pkg/review/telemetry"
	"github.com/reviewfleet/reviewfleet/pkg/version"
)

// exitCLIError is issued by this layer only, never by the core.
const exitCLIError = 4

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	exitCode := 0
	root := newRootCommand(&exitCode)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCLIError
	}
	return exitCode
}

func newRootCommand(exitCode *int) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("REVIEWFLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "reviewfleet [pr-number | file...]",
		Short: "Run a fleet of LLM review agents against a change set",
		Long: "reviewfleet reviews a branch diff (no arguments), a pull request\n" +
			"(one PR number), or an explicit set of files (one or more paths),\n" +
			"and exits 0/1/2 by the worst severity found, 3 on execution error.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, v, args, exitCode)
		},
	}

	flags := root.Flags()
	flags.StringP("base-branch", "b", "", "base branch for diff mode")
	flags.Int("issue", 0, "issue number to prefetch as review context")
	flags.StringP("model", "m", "", "model for every agent unless overridden")
	flags.Int("timeout", 0, "per-agent timeout in seconds")
	flags.Int("max-turns", 0, "per-agent request-turn budget")
	flags.Bool("parallel", false, "run agents within a phase concurrently")
	flags.StringP("output-format", "o", "", "report format: markdown or json")
	flags.Bool("save-reviews", false, "append the report to .hachimoku/reviews/")
	flags.Bool("show-cost", false, "include token usage in the report")
	flags.Int("max-files", 0, "maximum files per explicit file review")
	flags.String("agents-dir", "", "custom agent definitions directory (default <project>/.hachimoku/agents)")
	flags.String("llm-cmd", "claude", "external LLM command the agents shell out to")
	flags.StringArray("llm-arg", nil, "extra argument for the LLM command (repeatable)")
	flags.BoolP("verbose", "v", false, "debug logging on stderr")

	for _, key := range []string{
		"base-branch", "model", "timeout", "max-turns", "parallel",
		"output-format", "save-reviews", "show-cost", "max-files", "llm-cmd",
	} {
		// Bind errors only occur for unknown flag names, which is a
		// programming error caught by any test that builds the command.
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(key)))
	}

	root.AddCommand(newVersionCommand(), newInitCommand())
	return root
}

func runReview(cmd *cobra.Command, v *viper.Viper, args []string, exitCode *int) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(cmd)
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	shutdownTracing := telemetry.Setup(version.AppName)
	defer func() { _ = shutdownTracing(context.Background()) }()

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	overrides := collectOverrides(cmd, v)
	cfg, err := config.Resolve(workDir, overrides)
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}

	issue, _ := cmd.Flags().GetInt("issue")
	target, err := resolveTarget(args, cfg.BaseBranch, issue)
	if err != nil {
		return err
	}

	llmCmd := llmCommand(cmd, v)
	reporter := progress.New(os.Stderr)
	defer reporter.Close()

	eng, err := engine.New(engine.Dependencies{
		WorkDir:              workDir,
		SelectorAgent:        llmproc.SelectorAgentAdapter{Cmd: llmCmd},
		ReviewAgent:          llmproc.ReviewAgent{Cmd: llmCmd},
		AggregatorAgent:      llmproc.AggregatorAgentAdapter{Cmd: llmCmd},
		GhFetcher:            prefetch.GhFetcher{WorkDir: workDir},
		CustomDefinitionsDir: customAgentsDir(cmd, workDir),
		Logger:               logger,
		Progress:             reporter,
	})
	if err != nil {
		return err
	}

	result := eng.Run(ctx, target, overrides)
	reporter.Close()

	if err := writeReport(os.Stdout, result.Report, cfg); err != nil {
		return err
	}

	if cfg.SaveReviews {
		if path, err := history.New(workDir).Append(ctx, target, result.Report); err != nil {
			logger.Warn("failed to save review history", "error", err)
		} else {
			logger.Debug("review history saved", "path", path)
		}
	}

	*exitCode = result.ExitCode
	return nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// collectOverrides folds flags and REVIEWFLEET_* environment variables
// into the highest-precedence config layer. A key participates only when
// the operator actually set it; an untouched flag stays nil so it cannot
// clobber a lower layer.
func collectOverrides(cmd *cobra.Command, v *viper.Viper) config.Overrides {
	var o config.Overrides
	set := func(key string) bool {
		return cmd.Flags().Changed(key) || v.IsSet(key)
	}
	if set("model") {
		o.Model = ptr(v.GetString("model"))
	}
	if set("timeout") {
		o.Timeout = ptr(v.GetInt("timeout"))
	}
	if set("max-turns") {
		o.MaxTurns = ptr(v.GetInt("max-turns"))
	}
	if set("parallel") {
		o.Parallel = ptr(v.GetBool("parallel"))
	}
	if set("base-branch") {
		o.BaseBranch = ptr(v.GetString("base-branch"))
	}
	if set("output-format") {
		o.OutputFormat = ptr(v.GetString("output-format"))
	}
	if set("save-reviews") {
		o.SaveReviews = ptr(v.GetBool("save-reviews"))
	}
	if set("show-cost") {
		o.ShowCost = ptr(v.GetBool("show-cost"))
	}
	if set("max-files") {
		o.MaxFilesPerReview = ptr(v.GetInt("max-files"))
	}
	return o
}

func ptr[T any](v T) *T { return &v }

func llmCommand(cmd *cobra.Command, v *viper.Viper) llmproc.Command {
	name := v.GetString("llm-cmd")
	args, _ := cmd.Flags().GetStringArray("llm-arg")
	return llmproc.Command{Name: name, Args: args}
}

func customAgentsDir(cmd *cobra.Command, workDir string) string {
	if dir, _ := cmd.Flags().GetString("agents-dir"); dir != "" {
		return dir
	}
	dir := filepath.Join(workDir, ".hachimoku", "agents")
	if _, err := os.Stat(dir); err != nil {
		return ""
	}
	return dir
}

// writeReport renders report to w in cfg's output format. An unknown
// format is a CLI input error, caught here rather than deep in the core.
func writeReport(w io.Writer, report model.ReviewReport, cfg *model.Config) error {
	switch cfg.OutputFormat {
	case "", "markdown":
		_, err := io.WriteString(w, render.Markdown(report, cfg.ShowCost))
		return err
	case "json":
		data, err := render.JSON(report)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q (expected markdown or json)", cfg.OutputFormat)
	}
}
