package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrGhSubcommandNotAllowed and ErrGhImpliesWrite are the tool-policy
// violations for the gh_read category.
var (
	ErrGhSubcommandNotAllowed = errors.New("gh subcommand not allowed")
	ErrGhImpliesWrite         = errors.New("gh invocation implies a non-GET request")
)

// ghFlagsImplyingWrite are flags to `gh api` that implicitly switch the
// request to POST even without an explicit -X/--method.
var ghFlagsImplyingWrite = []string{"-f", "--field", "-F", "--raw-field", "--input"}

func ghReadHandles(workDir string) []Handle {
	return []Handle{{
		Name:    "gh_read",
		Builtin: false,
		Invoke: func(ctx context.Context, argv []string) (string, error) {
			if err := checkGhArgv(argv); err != nil {
				return "", err
			}
			return runSubprocess(ctx, workDir, "gh", argv...)
		},
	}}
}

func checkGhArgv(argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("%w: gh %v. Allowed: pr view, pr diff, issue view, api", ErrGhSubcommandNotAllowed, argv)
	}
	top, sub := argv[0], argv[1]
	switch {
	case top == "pr" && (sub == "view" || sub == "diff"):
		return nil
	case top == "issue" && sub == "view":
		return nil
	case top == "api":
		return checkGhAPIArgv(argv[1:])
	default:
		return fmt.Errorf("%w: gh %v. Allowed: pr view, pr diff, issue view, api", ErrGhSubcommandNotAllowed, argv)
	}
}

func checkGhAPIArgv(args []string) error {
	for i, a := range args {
		for _, flag := range ghFlagsImplyingWrite {
			if a == flag || strings.HasPrefix(a, flag+"=") {
				return fmt.Errorf("%w: %q implies POST", ErrGhImpliesWrite, a)
			}
		}
		if a == "-X" || a == "--method" {
			method := ""
			if i+1 < len(args) {
				method = args[i+1]
			}
			if !strings.EqualFold(method, "GET") {
				return fmt.Errorf("%w: -X %s", ErrGhImpliesWrite, method)
			}
		}
		if strings.HasPrefix(a, "--method=") {
			method := strings.TrimPrefix(a, "--method=")
			if !strings.EqualFold(method, "GET") {
				return fmt.Errorf("%w: --method=%s", ErrGhImpliesWrite, method)
			}
		}
		if strings.HasPrefix(a, "-X") && len(a) > 2 {
			method := strings.TrimPrefix(a, "-X")
			if !strings.EqualFold(method, "GET") {
				return fmt.Errorf("%w: -X%s", ErrGhImpliesWrite, method)
			}
		}
	}
	return nil
}
