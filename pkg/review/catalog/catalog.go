// Package catalog implements the tool-capability catalog: a fixed,
// process-wide table mapping capability tags to read-only tool handles.
package catalog

import (
	"context"
	"fmt"
)

// Category is a capability tag an agent definition can request.
type Category string

const (
	GitRead  Category = "git_read"
	GhRead   Category = "gh_read"
	FileRead Category = "file_read"
	WebFetch Category = "web_fetch"
)

// ErrUnknownCategory is returned by Resolve for any tag not in the catalog.
var ErrUnknownCategory = fmt.Errorf("unknown tool category")

// Handle is one bound tool callable.
type Handle struct {
	Name string
	// Builtin tools are recognized natively by some model adapters (e.g. a
	// web-fetch tool some providers implement server-side) and are surfaced
	// to the adapter by name rather than invoked by the runtime. Regular
	// tools are invoked directly by the runtime against a local executable
	// or the filesystem.
	Builtin bool
	// Invoke runs the tool. Builtin handles still carry an Invoke so a
	// fallback adapter without native support can call it directly. argv
	// is the tool-specific argument list (subcommand + flags for git/gh,
	// a single path for file_read, a single URL for web_fetch).
	Invoke func(ctx context.Context, argv []string) (string, error)
}

// ResolvedTools is the result of resolving a set of requested categories.
type ResolvedTools struct {
	Regular     []Handle
	Builtin     []Handle
	NativeNames []string
}

// Catalog is the fixed, process-wide, read-only-after-construction table.
type Catalog struct {
	handles map[Category][]Handle
}

// New builds the catalog with the standard four categories. workDir scopes
// file_read and the subprocess-based tools to a project root.
func New(workDir string) *Catalog {
	return &Catalog{
		handles: map[Category][]Handle{
			GitRead:  gitReadHandles(workDir),
			GhRead:   ghReadHandles(workDir),
			FileRead: fileReadHandles(workDir),
			WebFetch: webFetchHandles(),
		},
	}
}

// Resolve validates every requested category and returns the bound handles,
// split into regular and builtin tools. It fails fast on the first unknown
// tag.
func (c *Catalog) Resolve(categories []string) (ResolvedTools, error) {
	var resolved ResolvedTools
	for _, raw := range categories {
		cat := Category(raw)
		handles, ok := c.handles[cat]
		if !ok {
			return ResolvedTools{}, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
		}
		for _, h := range handles {
			if h.Builtin {
				resolved.Builtin = append(resolved.Builtin, h)
				resolved.NativeNames = append(resolved.NativeNames, h.Name)
			} else {
				resolved.Regular = append(resolved.Regular, h)
			}
		}
	}
	return resolved, nil
}

// Categories lists every capability tag the catalog knows about.
func (c *Catalog) Categories() []Category {
	return []Category{GitRead, GhRead, FileRead, WebFetch}
}
