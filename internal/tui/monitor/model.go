package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/mx/internal/db"
	mxsync "github.com/marcus/mx/internal/sync"
)

// MinWidth is the minimum terminal width for proper display
const MinWidth = 40

// MinHeight is the minimum terminal height for proper display
const MinHeight = 12

// TickMsg triggers a data refresh
type TickMsg time.Time

// SyncDoneMsg carries the result of a manual sync
type SyncDoneMsg struct {
	Result *mxsync.Result
}

// Model is the main Bubble Tea model for the sync monitor TUI
type Model struct {
	DB      *db.DB
	Manager *mxsync.Manager

	Width  int
	Height int

	Status     *mxsync.Status
	Queue      []db.OutboxEntry
	FailedRows []db.OutboxEntry
	History    []db.SyncHistoryEntry
	Err        error

	Spinner     spinner.Model
	SyncRunning bool
	LastResult  *mxsync.Result
	LastRefresh time.Time
	ShowHelp    bool

	RefreshInterval time.Duration
}

// NewModel creates a new monitor model
func NewModel(database *db.DB, manager *mxsync.Manager, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		DB:              database,
		Manager:         manager,
		Spinner:         sp,
		RefreshInterval: interval,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchData(),
		m.scheduleTick(),
		m.Spinner.Tick,
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.fetchData(), m.scheduleTick())

	case RefreshDataMsg:
		m.Status = msg.Status
		m.Queue = msg.Queue
		m.FailedRows = msg.Failed
		m.History = msg.History
		m.Err = msg.Err
		m.LastRefresh = msg.Timestamp
		return m, nil

	case SyncDoneMsg:
		m.SyncRunning = false
		m.LastResult = msg.Result
		return m, m.fetchData()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes key input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "s":
		if m.SyncRunning {
			return m, nil
		}
		m.SyncRunning = true
		return m, m.runSync(false)

	case "u":
		if m.SyncRunning {
			return m, nil
		}
		m.SyncRunning = true
		return m, m.runSync(true)

	case "r":
		return m, m.fetchData()

	case "?":
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

// scheduleTick returns a command that sends a TickMsg after the refresh interval
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchData returns a command that fetches monitor data
func (m Model) fetchData() tea.Cmd {
	return func() tea.Msg {
		return FetchData(m.DB, m.Manager)
	}
}

// runSync triggers a sync in the background
func (m Model) runSync(uploadOnly bool) tea.Cmd {
	mgr := m.Manager
	return func() tea.Msg {
		var res *mxsync.Result
		if uploadOnly {
			res = mgr.TriggerUpload(context.Background(), mxsync.Options{})
		} else {
			res = mgr.TriggerSync(context.Background(), mxsync.Options{})
		}
		return SyncDoneMsg{Result: res}
	}
}
