package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MonitorHistory is the number of recent command outcomes the monitor keeps.
const MonitorHistory = 12

// monitorTick is how often the monitor polls the counters.
const monitorTick = 500 * time.Millisecond

// MonitorStats are the host loop counters shown by the monitor.
type MonitorStats struct {
	Received uint64
	Applied  uint64
	Failed   uint64
	Sent     uint64
	Dropped  uint64
}

// StateMsg reports a connection state change to the monitor.
type StateMsg struct {
	State   string
	Remote  string
	Session string
}

// OutcomeMsg reports one applied or rejected command to the monitor.
type OutcomeMsg struct {
	OK   bool
	Text string
	At   time.Time
}

type tickMsg time.Time

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	Title   string              // e.g., "scenebridge host"
	Address string              // listen address shown in the header
	Stats   func() MonitorStats // polled on every tick; may be nil
}

// Monitor is a Bubble Tea model that shows the host's connection state,
// counters and the most recent command outcomes until the user quits.
type Monitor struct {
	config   MonitorConfig
	spinner  spinner.Model
	state    string
	remote   string
	session  string
	stats    MonitorStats
	outcomes []OutcomeMsg
	width    int
	quitting bool
}

// NewMonitor creates a monitor in the CLOSED state.
func NewMonitor(config MonitorConfig) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	return Monitor{
		config:  config,
		spinner: s,
		state:   "CLOSED",
		width:   GetTerminalWidth(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(monitorTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update implements tea.Model
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		return m, nil

	case StateMsg:
		m.state = msg.State
		m.remote = msg.Remote
		m.session = msg.Session
		return m, nil

	case OutcomeMsg:
		m.outcomes = append(m.outcomes, msg)
		if len(m.outcomes) > MonitorHistory {
			m.outcomes = m.outcomes[len(m.outcomes)-MonitorHistory:]
		}
		return m, nil

	case tickMsg:
		if m.config.Stats != nil {
			m.stats = m.config.Stats()
		}
		return m, tick()

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model
func (m Monitor) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var b strings.Builder

	params := []Param{{Key: "Listening", Value: m.config.Address}}
	b.WriteString(NewHeader(m.config.Title, "press q to stop", params).SetWidth(width).Render())
	b.WriteString("\n\n")

	stateLine := "  " + StateStyle(m.state).Render(m.state)
	if m.state == "LISTENING" || m.state == "HANDSHAKING" {
		stateLine = "  " + m.spinner.View() + " " + StateStyle(m.state).Render(m.state)
	}
	if m.remote != "" && m.state != "LISTENING" {
		stateLine += StepNoteStyle.Render(fmt.Sprintf("  %s  session %s", m.remote, m.session))
	}
	b.WriteString(stateLine)
	b.WriteString("\n\n")

	counters := []Param{
		{Key: "Received", Value: fmt.Sprint(m.stats.Received)},
		{Key: "Applied", Value: fmt.Sprint(m.stats.Applied)},
		{Key: "Failed", Value: fmt.Sprint(m.stats.Failed)},
		{Key: "Sent", Value: fmt.Sprint(m.stats.Sent)},
		{Key: "Dropped", Value: fmt.Sprint(m.stats.Dropped)},
	}
	for _, c := range counters {
		b.WriteString(ResultKeyStyle.Render("  "+c.Key+":") + " " + ResultValueStyle.Render(c.Value) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(TroubleshootingTitleStyle.Render("  Recent commands"))
	b.WriteString("\n")
	if len(m.outcomes) == 0 {
		b.WriteString(StepPendingStyle.Render("    (none yet)"))
		b.WriteString("\n")
	}
	for _, o := range m.outcomes {
		marker := StepCompleteStyle.Render(SuccessMarker)
		text := ResultValueStyle.Render(o.Text)
		if !o.OK {
			marker = ErrorTitleStyle.Render(FailureMarker)
			text = ErrorMessageStyle.Render(o.Text)
		}
		b.WriteString(fmt.Sprintf("    %s %s %s\n", StepPendingStyle.Render(o.At.Format("15:04:05")), marker, text))
	}

	return b.String()
}
