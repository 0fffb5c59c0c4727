package model

import "fmt"

// ReviewTarget is a closed tagged variant: Diff, PR, or File. The interface's
// unexported marker method reviewTarget() keeps it sealed to this package,
// so a switch over a ReviewTarget handles all three and nothing else. Go does
// not check type switches for exhaustiveness; consumers panic in their
// default branch on an unhandled variant.
type ReviewTarget interface {
	// Mode names the variant for discriminator-keyed records (history, logs).
	Mode() string
	// IssueNumber is the optional explicitly-named issue to prefetch, shared
	// by all three variants.
	IssueNumber() int
	reviewTarget()
}

// DiffTarget reviews the range between base_branch and HEAD.
type DiffTarget struct {
	BaseBranch    string
	IssueNumberOp int // 0 means absent
}

func (DiffTarget) reviewTarget()      {}
func (DiffTarget) Mode() string       { return "diff" }
func (t DiffTarget) IssueNumber() int { return t.IssueNumberOp }

// Validate enforces BaseBranch is non-empty and IssueNumberOp, if set, is
// positive.
func (t DiffTarget) Validate() error {
	if t.BaseBranch == "" {
		return fmt.Errorf("diff target: base_branch must not be empty")
	}
	if t.IssueNumberOp < 0 {
		return fmt.Errorf("diff target: issue_number must be positive, got %d", t.IssueNumberOp)
	}
	return nil
}

// PRTarget reviews a pull request's diff.
type PRTarget struct {
	PRNumber      int
	IssueNumberOp int
}

func (PRTarget) reviewTarget()      {}
func (PRTarget) Mode() string       { return "pr" }
func (t PRTarget) IssueNumber() int { return t.IssueNumberOp }

func (t PRTarget) Validate() error {
	if t.PRNumber <= 0 {
		return fmt.Errorf("pr target: pr_number must be positive, got %d", t.PRNumber)
	}
	if t.IssueNumberOp < 0 {
		return fmt.Errorf("pr target: issue_number must be positive, got %d", t.IssueNumberOp)
	}
	return nil
}

// FileTarget reviews an explicit set of files.
type FileTarget struct {
	Paths         []string
	IssueNumberOp int
}

func (FileTarget) reviewTarget()      {}
func (FileTarget) Mode() string       { return "file" }
func (t FileTarget) IssueNumber() int { return t.IssueNumberOp }

func (t FileTarget) Validate() error {
	if len(t.Paths) == 0 {
		return fmt.Errorf("file target: paths must not be empty")
	}
	for i, p := range t.Paths {
		if p == "" {
			return fmt.Errorf("file target: paths[%d] must not be empty", i)
		}
	}
	if t.IssueNumberOp < 0 {
		return fmt.Errorf("file target: issue_number must be positive, got %d", t.IssueNumberOp)
	}
	return nil
}
