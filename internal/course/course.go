// Package course defines the timetable domain types: recurring course entries,
// week patterns and slot conflicts.
package course

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/javiermolinar/coursetable/internal/timeslot"
)

// Validation errors.
var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrInvalidDay         = errors.New("day of week must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidWeekPattern = errors.New("invalid week pattern")
)

// Domain errors.
var (
	ErrSlotConflict = errors.New("slot overlaps with an existing course")
	ErrNotFound     = errors.New("course not found")
)

// Entry is one recurring course session.
type Entry struct {
	ID         string
	Title      string
	Location   string
	Instructor string
	DayOfWeek  int    // 1 = Monday ... 7 = Sunday
	SlotCode   string // raw code, decoded with timeslot.Decode
	Weeks      WeekPattern

	ReminderEnabled bool

	// Optional details carried by imported timetables.
	Contact  string
	Property string // e.g. "必修", "选修"
	Remarks  string

	CreatedAt time.Time
}

// Params holds user input for a new entry.
type Params struct {
	Title      string `validate:"required,max=128"`
	Location   string `validate:"max=128"`
	Instructor string `validate:"max=64"`
	DayOfWeek  int    `validate:"min=1,max=7"`
	SlotCode   string `validate:"required"`
	Weeks      WeekPattern
	Reminder   bool
	Contact    string `validate:"max=128"`
	Property   string `validate:"max=32"`
	Remarks    string `validate:"max=512"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New creates a validated Entry with a fresh ID.
func New(p Params, totalWeeks int) (*Entry, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.SlotCode = strings.TrimSpace(p.SlotCode)

	if err := validate.Struct(p); err != nil {
		return nil, translate(err)
	}
	if _, err := timeslot.Decode(p.SlotCode); err != nil {
		return nil, err
	}
	if err := p.Weeks.Validate(totalWeeks); err != nil {
		return nil, err
	}

	return &Entry{
		ID:              uuid.NewString(),
		Title:           p.Title,
		Location:        p.Location,
		Instructor:      p.Instructor,
		DayOfWeek:       p.DayOfWeek,
		SlotCode:        p.SlotCode,
		Weeks:           p.Weeks,
		ReminderEnabled: p.Reminder,
		Contact:         p.Contact,
		Property:        p.Property,
		Remarks:         p.Remarks,
		CreatedAt:       time.Now(),
	}, nil
}

// translate maps validator failures onto the package's sentinel errors.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "required" {
			return ErrEmptyTitle
		}
	case "DayOfWeek":
		return ErrInvalidDay
	case "SlotCode":
		return &timeslot.ParseError{Code: "", Reason: "slot code is required"}
	}
	return fmt.Errorf("%s: failed %q constraint", strings.ToLower(fe.Field()), fe.Tag())
}

// Slots decodes the entry's slot code.
func (e *Entry) Slots() (timeslot.Range, error) {
	return timeslot.Decode(e.SlotCode)
}

// IsActiveInWeek reports whether the entry meets in week.
func (e *Entry) IsActiveInWeek(week, totalWeeks int) bool {
	return e.Weeks.IsActiveInWeek(week, totalWeeks)
}

// Matches reports whether query appears in the title, instructor or location.
// Matching is case-insensitive; an empty query matches everything.
func (e *Entry) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{e.Title, e.Instructor, e.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ActiveIn returns the entries meeting in week, preserving order.
func ActiveIn(entries []*Entry, week, totalWeeks int) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if e.IsActiveInWeek(week, totalWeeks) {
			out = append(out, e)
		}
	}
	return out
}
