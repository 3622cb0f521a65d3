// Package importer reads course timetables from YAML and XLSX files and
// normalizes their textual fields into course entries.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/coursetable/internal/course"
)

// ErrUnsupportedFormat is returned for file extensions the importer does not read.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Record is one course as it appears in a timetable file, before
// normalization.
type Record struct {
	Title      string `yaml:"title"`
	Location   string `yaml:"location,omitempty"`
	Instructor string `yaml:"instructor,omitempty"`
	Day        string `yaml:"day"`   // "周一", "Monday" or "1"
	Slot       string `yaml:"slot"`  // "1-2节", "第3节", "5"
	Weeks      string `yaml:"weeks"` // "1-16周", "1,3,5", "5"
	WeekType   string `yaml:"week_type,omitempty"`
	Reminder   bool   `yaml:"reminder,omitempty"`
	Contact    string `yaml:"contact,omitempty"`
	Property   string `yaml:"property,omitempty"`
	Remarks    string `yaml:"remarks,omitempty"`
}

// RowError locates a record that failed to normalize.
type RowError struct {
	Row   int // 1-based position in the source
	Title string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Title, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Entry normalizes the record into a validated course entry.
func (r Record) Entry(totalWeeks int) (*course.Entry, error) {
	day, err := course.ParseDay(r.Day)
	if err != nil {
		return nil, fmt.Errorf("day %q: %w", r.Day, err)
	}
	weeks, err := NormalizeWeeks(r.Weeks, r.WeekType, totalWeeks)
	if err != nil {
		return nil, err
	}
	return course.New(course.Params{
		Title:      r.Title,
		Location:   strings.TrimSpace(r.Location),
		Instructor: strings.TrimSpace(r.Instructor),
		DayOfWeek:  day,
		SlotCode:   r.Slot,
		Weeks:      weeks,
		Reminder:   r.Reminder,
		Contact:    strings.TrimSpace(r.Contact),
		Property:   strings.TrimSpace(r.Property),
		Remarks:    strings.TrimSpace(r.Remarks),
	}, totalWeeks)
}

// Entries normalizes every record. All failures are collected; the returned
// error joins one *RowError per bad record.
func Entries(records []Record, totalWeeks int) ([]*course.Entry, error) {
	var (
		entries []*course.Entry
		errs    []error
	)
	for i, r := range records {
		e, err := r.Entry(totalWeeks)
		if err != nil {
			errs = append(errs, &RowError{Row: i + 1, Title: r.Title, Err: err})
			continue
		}
		entries = append(entries, e)
	}
	return entries, errors.Join(errs...)
}

// yamlFile is the top-level YAML document.
type yamlFile struct {
	Courses []Record `yaml:"courses"`
}

// ReadYAML decodes records from a YAML document with a top-level "courses" list.
func ReadYAML(r io.Reader) ([]Record, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	return doc.Courses, nil
}

// WriteYAML encodes records in the format ReadYAML reads.
func WriteYAML(w io.Writer, records []Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlFile{Courses: records}); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// LoadFile reads records from a .yaml, .yml or .xlsx file.
func LoadFile(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ReadYAML(f)
	case ".xlsx":
		return ReadXLSXFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FromEntry converts an entry back into its file representation.
func FromEntry(e *course.Entry) Record {
	return Record{
		Title:      e.Title,
		Location:   e.Location,
		Instructor: e.Instructor,
		Day:        course.DayName(e.DayOfWeek),
		Slot:       e.SlotCode,
		Weeks:      e.Weeks.String(),
		Reminder:   e.ReminderEnabled,
		Contact:    e.Contact,
		Property:   e.Property,
		Remarks:    e.Remarks,
	}
}
