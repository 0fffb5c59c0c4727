package catalog

import (
	"context"
	"errors"
	"fmt"
)

// gitAllowedSubcommands is the exact whitelist from the spec: any other
// verb fails before a process is ever spawned.
var gitAllowedSubcommands = map[string]bool{
	"diff":       true,
	"log":        true,
	"show":       true,
	"status":     true,
	"merge-base": true,
	"rev-parse":  true,
	"branch":     true,
	"ls-files":   true,
}

// ErrGitSubcommandNotAllowed is the tool-policy-violation error for any git
// verb outside the read-only whitelist.
var ErrGitSubcommandNotAllowed = errors.New("git subcommand not allowed")

func gitReadHandles(workDir string) []Handle {
	return []Handle{{
		Name:    "git_read",
		Builtin: false,
		Invoke: func(ctx context.Context, argv []string) (string, error) {
			if len(argv) == 0 || !gitAllowedSubcommands[argv[0]] {
				verb := "<empty>"
				if len(argv) > 0 {
					verb = argv[0]
				}
				return "", fmt.Errorf("%w: %q. Allowed: diff, log, show, status, merge-base, rev-parse, branch, ls-files", ErrGitSubcommandNotAllowed, verb)
			}
			return runSubprocess(ctx, workDir, "git", argv...)
		},
	}}
}
