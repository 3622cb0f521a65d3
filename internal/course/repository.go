package course

import "context"

// Filter narrows a course listing. Zero fields do not filter.
type Filter struct {
	Search       string // substring of title, instructor or location
	Day          int    // 1..7
	Week         int    // term week; requires TotalWeeks for the upper bound
	TotalWeeks   int
	ReminderOnly bool
}

// Repository defines the storage interface for course entries.
type Repository interface {
	// CreateCourse stores a new entry.
	// Returns ErrSlotConflict if it collides with a stored entry in any shared week.
	CreateCourse(ctx context.Context, e *Entry) error

	// GetCourse retrieves an entry by ID. Returns ErrNotFound when missing.
	GetCourse(ctx context.Context, id string) (*Entry, error)

	// UpdateCourse replaces a stored entry.
	// Returns ErrSlotConflict if the new slots collide with another entry.
	UpdateCourse(ctx context.Context, e *Entry) error

	// DeleteCourse removes an entry.
	DeleteCourse(ctx context.Context, id string) error

	// SetReminder toggles the reminder flag of an entry.
	SetReminder(ctx context.Context, id string, enabled bool) error

	// ListCourses returns entries matching f ordered by day, then slot code.
	ListCourses(ctx context.Context, f Filter) ([]*Entry, error)

	// ReplaceAll atomically swaps the whole collection, e.g. after an import.
	ReplaceAll(ctx context.Context, entries []*Entry) error

	// Close releases any resources held by the repository.
	Close() error
}
