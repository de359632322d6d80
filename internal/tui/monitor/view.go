package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/output"
	mxsync "github.com/marcus/mx/internal/sync"
)

// renderView draws the whole monitor screen
func (m Model) renderView() string {
	if m.Width < MinWidth || m.Height < MinHeight {
		return subtleStyle.Render("Terminal too small for monitor")
	}
	if m.Err != nil {
		return errStyle.Render("monitor error: "+m.Err.Error()) + "\n" + m.renderFooter()
	}

	width := m.Width - 4 // account for panel borders

	sections := []string{
		m.renderStatusPanel(width),
		m.renderQueuePanel(width),
		m.renderHistoryPanel(width),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusPanel(width int) string {
	var b strings.Builder

	if m.Status != nil && m.Status.Reachable {
		b.WriteString(onlineStyle.Render("● online"))
	} else {
		b.WriteString(offlineStyle.Render("● offline"))
	}

	if m.SyncRunning {
		b.WriteString("  " + m.Spinner.View() + " syncing")
	} else if m.Status != nil && m.Status.Syncing {
		b.WriteString("  " + m.Spinner.View() + " syncing")
	}

	if m.Status != nil {
		b.WriteString(fmt.Sprintf("  pending: %d", m.Status.Pending))
		if m.Status.Failed > 0 {
			b.WriteString("  " + warnStyle.Render(fmt.Sprintf("failed: %d", m.Status.Failed)))
		}
		if !m.Status.LastSyncAt.IsZero() {
			b.WriteString("  " + subtleStyle.Render("last sync "+output.FormatTimeAgo(m.Status.LastSyncAt)))
		}
	}

	if m.LastResult != nil {
		line := fmt.Sprintf("last run: %d up, %d down", m.LastResult.Uploaded, m.LastResult.Downloaded)
		if !m.LastResult.Success {
			line = errStyle.Render(line + fmt.Sprintf(", %d failed", m.LastResult.Failed))
		} else {
			line = subtleStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}

	if m.Status != nil && len(m.Status.Cursors) > 0 {
		var parts []string
		for entityType, at := range m.Status.Cursors {
			parts = append(parts, fmt.Sprintf("%s: %s", entityType, output.FormatTimeAgo(at)))
		}
		b.WriteString("\n" + subtleStyle.Render("cursors  "+strings.Join(parts, "   ")))
	}

	return renderPanel("Sync", b.String(), width)
}

func (m Model) renderQueuePanel(width int) string {
	rows := append([]db.OutboxEntry{}, m.Queue...)
	rows = append(rows, m.FailedRows...)
	if len(rows) == 0 {
		return renderPanel("Queue", subtleStyle.Render("empty"), width)
	}

	var lines []string
	for i, e := range rows {
		if i >= 8 {
			lines = append(lines, subtleStyle.Render(fmt.Sprintf("… and %d more", len(rows)-i)))
			break
		}
		line := fmt.Sprintf("%-6s %-6s %-14s retries=%d", e.Action, e.EntityType, e.EntityID, e.RetryCount)
		if e.RetryCount >= mxsync.MaxRetryCount {
			line = errStyle.Render(line)
		}
		if e.LastError != "" {
			line += "  " + subtleStyle.Render(e.LastError)
		}
		lines = append(lines, ansi.Truncate(line, width, "…"))
	}
	return renderPanel("Queue", strings.Join(lines, "\n"), width)
}

func (m Model) renderHistoryPanel(width int) string {
	if len(m.History) == 0 {
		return renderPanel("Activity", subtleStyle.Render("no sync activity yet"), width)
	}

	var lines []string
	for _, h := range m.History {
		badge := uploadBadge
		if h.Direction == "download" {
			badge = downloadBadge
		}
		line := fmt.Sprintf("%s %-6s %s/%s  %s",
			badge.Render(fmt.Sprintf("%-8s", h.Direction)),
			h.Action, h.EntityType, h.EntityID,
			timestampStyle.Render(output.FormatTimeAgo(h.Timestamp)))
		lines = append(lines, ansi.Truncate(line, width, "…"))
	}
	return renderPanel("Activity", strings.Join(lines, "\n"), width)
}

func (m Model) renderFooter() string {
	if m.ShowHelp {
		return helpStyle.Render("s sync   u upload only   r refresh   q quit   ? close help")
	}
	return helpStyle.Render("? help   q quit")
}

func renderPanel(title, content string, width int) string {
	header := panelTitleStyle.Render(title)
	body := lipgloss.JoinVertical(lipgloss.Left, header, content)
	return panelStyle.Width(width).Render(body)
}
