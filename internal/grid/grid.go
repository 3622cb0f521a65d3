// Package grid places course entries on a day × period grid and maps
// pointer coordinates back to entries.
package grid

import (
	"errors"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/timeslot"
)

// Layout errors.
var (
	ErrInvalidViewport = errors.New("invalid viewport")
	ErrSlotOutOfGrid   = errors.New("slot range exceeds grid rows")
)

// DefaultPaletteSize is the number of distinct course colors.
const DefaultPaletteSize = 8

// Options configures grid geometry. Units are whatever the caller draws in:
// pixels for a canvas, cells for a terminal.
type Options struct {
	Columns      int
	Rows         int
	LabelWidth   int
	HeaderHeight int

	// PreferredDayWidth caps the day column width; 0 means fill the viewport.
	PreferredDayWidth int
	MinDayWidth       int

	// PreferredRowHeight caps the row height; 0 means fill the viewport.
	PreferredRowHeight int
	MinRowHeight       int

	// Padding is the inset applied on every side of an entry's rectangle.
	Padding int

	PaletteSize int
}

// DefaultOptions returns a seven-day grid with one row per period.
func DefaultOptions() Options {
	return Options{
		Columns:      course.DaysPerWeek,
		Rows:         timeslot.MaxSlots,
		LabelWidth:   50,
		HeaderHeight: 40,
		MinDayWidth:  20,
		MinRowHeight: 10,
		Padding:      2,
		PaletteSize:  DefaultPaletteSize,
	}
}

// Viewport is the drawable area.
type Viewport struct {
	Width  int
	Height int
}

// Point is a pointer position in viewport coordinates.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle. Its bounds are closed: it covers
// [X, X+W] × [Y, Y+H].
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies within the closed bounds of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Request is the input of one layout pass.
type Request struct {
	Entries     []*course.Entry
	CurrentWeek int
	TotalWeeks  int
	Viewport    Viewport
}

// PlacedEntry is an entry positioned on the grid for one layout pass.
type PlacedEntry struct {
	Entry      *course.Entry
	Slots      timeslot.Range
	Rect       Rect
	ColorIndex int
}

// Skipped is an entry left out of the layout because it could not be decoded
// or does not fit the grid.
type Skipped struct {
	Entry *course.Entry
	Err   error
}

// Conflict is a pair of placed entries that overlap. First and Second index
// into Result.Placed.
type Conflict struct {
	First, Second int
}

// Result is the output of a layout pass.
type Result struct {
	Placed    []PlacedEntry
	Skipped   []Skipped
	Conflicts []Conflict
	Colors    ColorAssignment
	Geometry  Geometry
}
