// Package output provides styled terminal output helpers (success, error,
// warning, media item formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/mx/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	statusStyles = map[models.SyncStatus]lipgloss.Style{
		models.SyncLocal:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		models.SyncPending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.SyncSynced:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// StatusBadge returns a colored sync status label
func StatusBadge(status models.SyncStatus) string {
	style, ok := statusStyles[status]
	if !ok {
		return string(status)
	}
	return style.Render(string(status))
}

// FormatKind returns a colored kind label
func FormatKind(kind models.Kind) string {
	return kindStyle.Render(string(kind))
}

// FormatDuration renders seconds as m:ss or h:mm:ss
func FormatDuration(sec int) string {
	if sec <= 0 {
		return "-"
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatItemShort returns a one-line item summary: id, kind, status, title
func FormatItemShort(item *models.MediaItem) string {
	parts := []string{
		subtleStyle.Render(item.ID),
		FormatKind(item.Kind),
		StatusBadge(item.SyncStatus),
		titleStyle.Render(item.Title),
	}
	if item.DurationSec > 0 {
		parts = append(parts, subtleStyle.Render(FormatDuration(item.DurationSec)))
	}
	if len(item.Tags) > 0 {
		parts = append(parts, subtleStyle.Render("["+strings.Join(item.Tags, ",")+"]"))
	}
	return strings.Join(parts, "  ")
}

// FormatItemLong returns a multi-line item view (description rendered
// separately so callers can pass it through the markdown renderer).
func FormatItemLong(item *models.MediaItem) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(item.Title) + "\n")
	b.WriteString(subtleStyle.Render(item.ID) + "  " + FormatKind(item.Kind) + "  " + StatusBadge(item.SyncStatus) + "\n")
	if item.Author != "" {
		b.WriteString("Author:    " + item.Author + "\n")
	}
	if item.DurationSec > 0 {
		b.WriteString("Duration:  " + FormatDuration(item.DurationSec) + "\n")
	}
	if item.MimeType != "" {
		b.WriteString("Type:      " + item.MimeType + "\n")
	}
	if len(item.Tags) > 0 {
		b.WriteString("Tags:      " + strings.Join(item.Tags, ", ") + "\n")
	}
	if item.FilePath != "" {
		b.WriteString("File:      " + item.FilePath + "\n")
	}
	b.WriteString("Updated:   " + FormatTimeAgo(item.UpdatedAt) + "\n")
	if item.ServerUpdatedAt != nil {
		b.WriteString("Server:    " + FormatTimeAgo(*item.ServerUpdatedAt) + "\n")
	}
	if item.DeletedAt != nil {
		b.WriteString(errorStyle.Render("Deleted:   "+FormatTimeAgo(*item.DeletedAt)) + "\n")
	}
	return b.String()
}

// FormatTimeAgo renders a timestamp relative to now
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a bold section title
func SectionHeader(title string) string {
	return titleStyle.Render(title)
}

// Subtle returns dimmed text
func Subtle(s string) string {
	return subtleStyle.Render(s)
}
