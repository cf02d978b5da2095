package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	DueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // Dim gray
			Strikethrough(true)

	TimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Medium gray
)

// FormatReminders renders a reminder list for the terminal, grouped by
// state relative to now.
func FormatReminders(reminders []reminder.Reminder, now time.Time) string {
	if len(reminders) == 0 {
		return TimeStyle.Render("No reminders.") + "\n"
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Reminders (%d)", len(reminders))))
	b.WriteString("\n")

	for _, r := range reminders {
		var line string
		switch {
		case r.Completed:
			line = DoneStyle.Render("✓ " + r.ReminderText)
		case r.DueAt(now):
			line = DueStyle.Render("! " + r.ReminderText)
		default:
			line = PendingStyle.Render("• " + r.ReminderText)
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", line, TimeStyle.Render(r.DateTime)))
	}

	return b.String()
}

// RenderMarkdown renders the watched context document for the terminal.
func RenderMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
