package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// errBadTarget marks CLI input errors, which exit 4 and never reach the
// core engine.
var errBadTarget = errors.New("invalid review target")

// resolveTarget maps positional arguments to a ReviewTarget: a single
// integer selects a pull request, one or more paths select explicit files,
// and no arguments reviews the diff against baseBranch. Mixing integers
// and paths is rejected here, before the core ever sees the input.
func resolveTarget(args []string, baseBranch string, issue int) (model.ReviewTarget, error) {
	if len(args) == 0 {
		return model.DiffTarget{BaseBranch: baseBranch, IssueNumberOp: issue}, nil
	}

	numbers := 0
	for _, arg := range args {
		if _, err := strconv.Atoi(arg); err == nil {
			numbers++
		}
	}

	switch {
	case numbers == len(args):
		if len(args) > 1 {
			return nil, fmt.Errorf("%w: expected at most one pull-request number, got %d", errBadTarget, len(args))
		}
		n, _ := strconv.Atoi(args[0])
		if n <= 0 {
			return nil, fmt.Errorf("%w: pull-request number must be positive, got %d", errBadTarget, n)
		}
		return model.PRTarget{PRNumber: n, IssueNumberOp: issue}, nil
	case numbers > 0:
		return nil, fmt.Errorf("%w: cannot mix pull-request numbers and file paths in %v", errBadTarget, args)
	default:
		return model.FileTarget{Paths: args, IssueNumberOp: issue}, nil
	}
}
