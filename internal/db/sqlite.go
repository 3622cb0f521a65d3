// Package db provides SQLite storage implementation.
package db

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/coursetable/internal/course"
)

// SQLite implements course.Repository using SQLite.
type SQLite struct {
	db         *sql.DB
	totalWeeks int
	log        *zap.Logger
}

// Option configures a SQLite repository.
type Option func(*SQLite)

// WithTotalWeeks sets the term length used for week filters and conflict checks.
func WithTotalWeeks(n int) Option {
	return func(s *SQLite) {
		if n > 0 {
			s.totalWeeks = n
		}
	}
}

// WithLogger sets the logger for storage events.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLite) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a new SQLite repository and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, totalWeeks: course.DefaultTotalWeeks, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

const courseColumns = `id, title, location, instructor, day_of_week, slot_code, weeks,
	reminder_enabled, contact, property, remarks, created_at`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateCourse stores a new entry.
// Returns ErrSlotConflict if it collides with a stored entry in any shared week.
func (s *SQLite) CreateCourse(ctx context.Context, e *course.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkConflict(ctx, tx, e); err != nil {
		return err
	}
	if err := insertCourse(ctx, tx, e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.log.Debug("course created", zap.String("id", e.ID), zap.String("title", e.Title))
	return nil
}

func insertCourse(ctx context.Context, q queryer, e *course.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Location,
		e.Instructor,
		e.DayOfWeek,
		e.SlotCode,
		e.Weeks.String(),
		e.ReminderEnabled,
		e.Contact,
		e.Property,
		e.Remarks,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

// GetCourse retrieves an entry by ID. Returns ErrNotFound when missing.
func (s *SQLite) GetCourse(ctx context.Context, id string) (*course.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying course: %w", err)
	}
	entries, err := scanCourses(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", course.ErrNotFound, id)
	}
	return entries[0], nil
}

// UpdateCourse replaces a stored entry.
// Returns ErrSlotConflict if the new slots collide with another entry.
func (s *SQLite) UpdateCourse(ctx context.Context, e *course.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkConflict(ctx, tx, e); err != nil {
		return err
	}

	query := `
		UPDATE courses
		SET title = ?, location = ?, instructor = ?, day_of_week = ?, slot_code = ?,
		    weeks = ?, reminder_enabled = ?, contact = ?, property = ?, remarks = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		e.Title, e.Location, e.Instructor, e.DayOfWeek, e.SlotCode,
		e.Weeks.String(), e.ReminderEnabled, e.Contact, e.Property, e.Remarks,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", course.ErrNotFound, e.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteCourse removes an entry.
func (s *SQLite) DeleteCourse(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", course.ErrNotFound, id)
	}
	s.log.Debug("course deleted", zap.String("id", id))
	return nil
}

// SetReminder toggles the reminder flag of an entry.
func (s *SQLite) SetReminder(ctx context.Context, id string, enabled bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE courses SET reminder_enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("setting reminder: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", course.ErrNotFound, id)
	}
	return nil
}

// ListCourses returns entries matching f ordered by day, then first slot.
func (s *SQLite) ListCourses(ctx context.Context, f course.Filter) ([]*course.Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Day != 0 {
		where = append(where, "day_of_week = ?")
		args = append(args, f.Day)
	}
	if f.ReminderOnly {
		where = append(where, "reminder_enabled = 1")
	}

	query := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY day_of_week, created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	entries, err := scanCourses(rows)
	if err != nil {
		return nil, err
	}

	total := cmp.Or(f.TotalWeeks, s.totalWeeks)
	entries = slices.DeleteFunc(entries, func(e *course.Entry) bool {
		if f.Week != 0 && !e.IsActiveInWeek(f.Week, total) {
			return true
		}
		return !e.Matches(f.Search)
	})
	slices.SortStableFunc(entries, func(a, b *course.Entry) int {
		if c := cmp.Compare(a.DayOfWeek, b.DayOfWeek); c != 0 {
			return c
		}
		return cmp.Compare(slotStart(a), slotStart(b))
	})
	return entries, nil
}

// slotStart orders undecodable slot codes last.
func slotStart(e *course.Entry) int {
	r, err := e.Slots()
	if err != nil {
		return 1 << 30
	}
	return r.Start
}

// ReplaceAll atomically swaps the whole collection, e.g. after an import.
// Returns ErrSlotConflict if two of the new entries collide.
func (s *SQLite) ReplaceAll(ctx context.Context, entries []*course.Entry) error {
	for i, e := range entries {
		if conflicts := course.FindConflicts(e, entries[:i], 0, s.totalWeeks); len(conflicts) > 0 {
			return conflictError(e, conflicts[0])
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("clearing courses: %w", err)
	}
	for _, e := range entries {
		if err := insertCourse(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.log.Info("courses replaced", zap.Int("count", len(entries)))
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// checkConflict rejects e when it collides with a stored entry on the same day
// in any week both are active.
func (s *SQLite) checkConflict(ctx context.Context, q queryer, e *course.Entry) error {
	rows, err := q.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE day_of_week = ? AND id != ?`,
		e.DayOfWeek, e.ID)
	if err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}
	sameDay, err := scanCourses(rows)
	if err != nil {
		return err
	}
	if conflicts := course.FindConflicts(e, sameDay, 0, s.totalWeeks); len(conflicts) > 0 {
		return conflictError(e, conflicts[0])
	}
	return nil
}

func conflictError(e, other *course.Entry) error {
	return fmt.Errorf("%w: %q (%s %s) collides with %q (%s %s)",
		course.ErrSlotConflict,
		e.Title, course.DayName(e.DayOfWeek), e.SlotCode,
		other.Title, course.DayName(other.DayOfWeek), other.SlotCode,
	)
}

// scanCourses reads and closes rows.
func scanCourses(rows *sql.Rows) ([]*course.Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []*course.Entry
	for rows.Next() {
		var (
			e         course.Entry
			weeks     string
			createdAt sql.NullString
		)
		err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Location,
			&e.Instructor,
			&e.DayOfWeek,
			&e.SlotCode,
			&weeks,
			&e.ReminderEnabled,
			&e.Contact,
			&e.Property,
			&e.Remarks,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}

		e.Weeks, err = course.ParseWeekPattern(weeks)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", e.ID, err)
		}
		if createdAt.Valid {
			e.CreatedAt, err = parseTimestamp(createdAt.String)
			if err != nil {
				return nil, fmt.Errorf("course %s: parsing created at: %w", e.ID, err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}
	return entries, nil
}

// parseTimestamp parses the formats SQLite may hand back for a DATETIME column.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp format: " + s)
}
