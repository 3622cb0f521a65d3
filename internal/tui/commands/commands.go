// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/coursetable/internal/course"
)

// CoursesLoadedMsg is sent when the course list is loaded.
type CoursesLoadedMsg struct {
	Entries []*course.Entry
}

// ReminderToggledMsg is sent after a course's reminder flag changed.
type ReminderToggledMsg struct {
	ID      string
	Title   string
	Enabled bool
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadCourses loads every stored course. Week filtering happens at layout
// time so navigation never hits storage.
func LoadCourses(repo course.Repository) tea.Cmd {
	return func() tea.Msg {
		entries, err := repo.ListCourses(context.Background(), course.Filter{})
		if err != nil {
			return ErrMsg{Err: err}
		}
		return CoursesLoadedMsg{Entries: entries}
	}
}

// ToggleReminder flips the reminder flag of e.
func ToggleReminder(repo course.Repository, e *course.Entry) tea.Cmd {
	id, title, enabled := e.ID, e.Title, !e.ReminderEnabled
	return func() tea.Msg {
		if err := repo.SetReminder(context.Background(), id, enabled); err != nil {
			return ErrMsg{Err: fmt.Errorf("updating reminder: %w", err)}
		}
		return ReminderToggledMsg{ID: id, Title: title, Enabled: enabled}
	}
}

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// CopyText copies text to the system clipboard.
func CopyText(text, label string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied " + label}
	}
}
