package progress

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Live renders a continuously-updated agent table on a TTY, driven by a
// bubbletea program on its own goroutine. Events arrive via Send, which is
// safe from any goroutine.
type Live struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewLive builds and starts the live view writing to f.
func NewLive(f *os.File) *Live {
	p := tea.NewProgram(newLiveModel(),
		tea.WithOutput(f),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	l := &Live{program: p, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		_, _ = p.Run()
	}()
	return l
}

func (l *Live) SelectorStarted() {
	l.program.Send(selectorStartedMsg{})
}

func (l *Live) SelectorFinished(selected []string, err error) {
	l.program.Send(selectorFinishedMsg{selected: selected, err: err})
}

func (l *Live) AgentStarted(name string, phase model.Phase) {
	l.program.Send(agentStartedMsg{name: name, phase: phase})
}

func (l *Live) AgentFinished(result model.AgentResult) {
	l.program.Send(agentFinishedMsg{result: result})
}

// Close stops the rendering loop, leaving the final table on screen. Safe
// to call more than once.
func (l *Live) Close() {
	l.once.Do(func() {
		l.program.Quit()
		<-l.done
	})
}

type selectorStartedMsg struct{}

type selectorFinishedMsg struct {
	selected []string
	err      error
}

type agentStartedMsg struct {
	name  string
	phase model.Phase
}

type agentFinishedMsg struct {
	result model.AgentResult
}

type agentRow struct {
	name    string
	phase   model.Phase
	running bool
	status  string
}

type liveModel struct {
	spin     spinner.Model
	selector string
	rows     []agentRow
	index    map[string]int
}

func newLiveModel() liveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = warnStyle
	return liveModel{spin: s, index: map[string]int{}}
}

func (m liveModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case selectorStartedMsg:
		m.selector = "running"
		return m, nil
	case selectorFinishedMsg:
		if msg.err != nil {
			m.selector = errorStyle.Render("failed: " + msg.err.Error())
		} else if len(msg.selected) == 0 {
			m.selector = dimStyle.Render("no agents apply")
		} else {
			m.selector = successStyle.Render(fmt.Sprintf("%d agent(s) selected", len(msg.selected)))
		}
		return m, nil
	case agentStartedMsg:
		if i, ok := m.index[msg.name]; ok {
			m.rows[i].running = true
			return m, nil
		}
		m.index[msg.name] = len(m.rows)
		m.rows = append(m.rows, agentRow{name: msg.name, phase: msg.phase, running: true})
		return m, nil
	case agentFinishedMsg:
		name := msg.result.Name()
		i, ok := m.index[name]
		if !ok {
			m.index[name] = len(m.rows)
			m.rows = append(m.rows, agentRow{name: name})
			i = m.index[name]
		}
		m.rows[i].running = false
		m.rows[i].status = renderStatus(msg.result)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		// The view is display-only; keystrokes are ignored. Ctrl-C still
		// reaches the engine's own signal handler because the program runs
		// without its own.
		return m, nil
	default:
		return m, nil
	}
}

func renderStatus(result model.AgentResult) string {
	switch r := result.(type) {
	case model.SuccessResult:
		return successStyle.Render(fmt.Sprintf("✓ %d issues (%.1fs)", len(r.Issues), r.Elapsed.Seconds()))
	case model.TruncatedResult:
		return warnStyle.Render(fmt.Sprintf("◐ truncated, %d issues (%d turns)", len(r.Issues), r.TurnsConsumed))
	case model.TimeoutResult:
		return errorStyle.Render(fmt.Sprintf("✗ timeout (%ds)", r.TimeoutSeconds))
	case model.ErrorResult:
		return errorStyle.Render("✗ " + r.ErrorMessage)
	default:
		panic(fmt.Sprintf("progress: unhandled AgentResult variant %T", result))
	}
}

func (m liveModel) View() string {
	out := titleStyle.Render("reviewfleet") + "\n"

	switch m.selector {
	case "":
	case "running":
		out += fmt.Sprintf("%s selector: choosing agents...\n", m.spin.View())
	default:
		out += "  selector: " + m.selector + "\n"
	}

	if len(m.rows) == 0 {
		return out
	}

	rows := make([]agentRow, len(m.rows))
	copy(rows, m.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].phase != rows[j].phase {
			return rows[i].phase < rows[j].phase
		}
		return rows[i].name < rows[j].name
	})

	for _, r := range rows {
		status := r.status
		if r.running {
			status = m.spin.View() + " running"
		}
		out += fmt.Sprintf("  %-28s %-6s %s\n", r.name, dimStyle.Render(r.phase.String()), status)
	}
	return out
}
