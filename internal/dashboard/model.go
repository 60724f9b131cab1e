package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/remon-cli/remon/internal/collector"
)

// Source provides metric snapshots to the dashboard.
type Source interface {
	Collect(ctx context.Context) (*collector.Snapshot, error)
}

// collectTimeout bounds one collection cycle so a hung connection
// never freezes the dashboard.
const collectTimeout = 45 * time.Second

// Model is the Bubble Tea model for the live dashboard.
type Model struct {
	source   Source
	host     string
	interval time.Duration

	spinner spinner.Model
	history *History

	snap       *collector.Snapshot
	err        error
	lastUpdate time.Time

	width      int
	height     int
	collecting bool
	quitting   bool
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// snapshotMsg carries the result of one collection cycle.
type snapshotMsg struct {
	snap *collector.Snapshot
	err  error
	time time.Time
}

// NewModel creates a dashboard model polling source every interval.
// host is shown in the header.
func NewModel(source Source, host string, interval time.Duration) Model {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		source:   source,
		host:     host,
		interval: interval,
		spinner:  sp,
		history:  NewHistory(DefaultHistorySize),
	}
}

// Init starts the spinner, the tick timer, and the first collection.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.collectCmd(), m.tickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		// Skip overlapping cycles when the server is slow
		if !m.collecting {
			m.collecting = true
			cmds = append(cmds, m.collectCmd())
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.collecting = false
		m.lastUpdate = msg.time
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.snap = msg.snap
			m.history.Push(msg.snap)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// tickCmd schedules the next refresh.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd runs one collection cycle off the UI goroutine.
func (m Model) collectCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
		defer cancel()

		snap, err := source.Collect(ctx)
		return snapshotMsg{snap: snap, err: err, time: time.Now()}
	}
}

// SecondsSinceUpdate returns how many seconds have passed since the
// last completed cycle.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(time.Since(m.lastUpdate).Seconds())
}

// Run starts the dashboard in the terminal and blocks until quit.
func Run(source Source, host string, interval time.Duration) error {
	p := tea.NewProgram(NewModel(source, host, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
