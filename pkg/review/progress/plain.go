package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Plain writes one line per event, for non-TTY stderr (CI logs, pipes).
type Plain struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlain builds a Plain reporter writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w}
}

func (p *Plain) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Plain) SelectorStarted() {
	p.line("selector: choosing agents...")
}

func (p *Plain) SelectorFinished(selected []string, err error) {
	if err != nil {
		p.line("selector: failed: %v", err)
		return
	}
	if len(selected) == 0 {
		p.line("selector: no agents apply to this change")
		return
	}
	p.line("selector: %d agent(s) selected: %v", len(selected), selected)
}

func (p *Plain) AgentStarted(name string, phase model.Phase) {
	p.line("agent %s (%s): running", name, phase)
}

func (p *Plain) AgentFinished(result model.AgentResult) {
	switch r := result.(type) {
	case model.SuccessResult:
		p.line("agent %s: success (%d issues, %.1fs)", r.AgentName, len(r.Issues), r.Elapsed.Seconds())
	case model.TruncatedResult:
		p.line("agent %s: truncated after %d turns (%d issues, %.1fs)", r.AgentName, r.TurnsConsumed, len(r.Issues), r.Elapsed.Seconds())
	case model.TimeoutResult:
		p.line("agent %s: timed out after %ds", r.AgentName, r.TimeoutSeconds)
	case model.ErrorResult:
		p.line("agent %s: error: %s", r.AgentName, r.ErrorMessage)
	default:
		panic(fmt.Sprintf("progress: unhandled AgentResult variant %T", result))
	}
}

func (p *Plain) Close() {}
