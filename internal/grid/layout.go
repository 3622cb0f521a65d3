package grid

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/coursetable/internal/course"
)

// Geometry describes the computed grid dimensions of one layout pass.
type Geometry struct {
	LabelWidth   int
	HeaderHeight int
	DayWidth     int
	RowHeight    int
	Columns      int
	Rows         int
	Padding      int
}

// Width returns the total grid width including the label column.
func (g Geometry) Width() int { return g.LabelWidth + g.Columns*g.DayWidth }

// Height returns the total grid height including the header row.
func (g Geometry) Height() int { return g.HeaderHeight + g.Rows*g.RowHeight }

// CellRect returns the unpadded rectangle of (day, slot), both 1-based.
func (g Geometry) CellRect(day, slot int) Rect {
	return Rect{
		X: g.LabelWidth + (day-1)*g.DayWidth,
		Y: g.HeaderHeight + (slot-1)*g.RowHeight,
		W: g.DayWidth,
		H: g.RowHeight,
	}
}

// CellAt maps p to the (day, slot) cell under it. It reports false for points
// in the label column, the header row, or outside the grid.
func (g Geometry) CellAt(p Point) (day, slot int, ok bool) {
	if g.DayWidth <= 0 || g.RowHeight <= 0 {
		return 0, 0, false
	}
	if p.X < g.LabelWidth || p.Y < g.HeaderHeight {
		return 0, 0, false
	}
	day = (p.X-g.LabelWidth)/g.DayWidth + 1
	slot = (p.Y-g.HeaderHeight)/g.RowHeight + 1
	if day > g.Columns || slot > g.Rows {
		return 0, 0, false
	}
	return day, slot, true
}

// Engine computes grid layouts. It holds only configuration; every call is
// independent.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. Zero option fields fall back to DefaultOptions
// where a zero would be meaningless.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.PaletteSize <= 0 {
		opts.PaletteSize = def.PaletteSize
	}
	if opts.MinDayWidth <= 0 {
		opts.MinDayWidth = 1
	}
	if opts.MinRowHeight <= 0 {
		opts.MinRowHeight = 1
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	return &Engine{opts: opts}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Geometry computes the grid dimensions for a viewport.
func (e *Engine) Geometry(vp Viewport) (Geometry, error) {
	o := e.opts
	if vp.Width <= 0 || vp.Height <= 0 {
		return Geometry{}, fmt.Errorf("%w: size %dx%d", ErrInvalidViewport, vp.Width, vp.Height)
	}
	if o.Columns <= 0 || o.Rows <= 0 {
		return Geometry{}, fmt.Errorf("%w: %d columns, %d rows", ErrInvalidViewport, o.Columns, o.Rows)
	}

	dayWidth, err := fit(vp.Width-o.LabelWidth, o.Columns, o.PreferredDayWidth, o.MinDayWidth)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: width %d: %v", ErrInvalidViewport, vp.Width, err)
	}
	rowHeight, err := fit(vp.Height-o.HeaderHeight, o.Rows, o.PreferredRowHeight, o.MinRowHeight)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: height %d: %v", ErrInvalidViewport, vp.Height, err)
	}

	pad := min(o.Padding, (dayWidth-1)/2, (rowHeight-1)/2)
	return Geometry{
		LabelWidth:   o.LabelWidth,
		HeaderHeight: o.HeaderHeight,
		DayWidth:     dayWidth,
		RowHeight:    rowHeight,
		Columns:      o.Columns,
		Rows:         o.Rows,
		Padding:      max(pad, 0),
	}, nil
}

// fit divides space evenly into n parts, capped at preferred and never below
// minimum.
func fit(space, n, preferred, minimum int) (int, error) {
	if space <= 0 {
		return 0, errors.New("no room after fixed margins")
	}
	size := space / n
	if preferred > 0 {
		size = min(size, preferred)
	}
	if size < minimum {
		return 0, fmt.Errorf("%d per column is below the minimum %d", size, minimum)
	}
	return size, nil
}

// Layout places the entries active in req.CurrentWeek. Entries with an
// invalid day or slot code, or slots beyond the grid, are listed in
// Result.Skipped. Entries in inactive weeks are silently left out. Overlapping
// entries are all placed and reported in Result.Conflicts.
//
// colors is not modified; Result.Colors holds the assignment after this pass.
func (e *Engine) Layout(req Request, colors ColorAssignment) (Result, error) {
	geo, err := e.Geometry(req.Viewport)
	if err != nil {
		return Result{}, err
	}

	next := colors.Clone()
	res := Result{Geometry: geo}

	for _, entry := range req.Entries {
		if entry == nil || !entry.IsActiveInWeek(req.CurrentWeek, req.TotalWeeks) {
			continue
		}
		if !course.ValidDay(entry.DayOfWeek) || entry.DayOfWeek > geo.Columns {
			res.Skipped = append(res.Skipped, Skipped{
				Entry: entry,
				Err:   fmt.Errorf("%w: got %d", course.ErrInvalidDay, entry.DayOfWeek),
			})
			continue
		}
		slots, err := entry.Slots()
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Entry: entry, Err: err})
			continue
		}
		if slots.End > geo.Rows {
			res.Skipped = append(res.Skipped, Skipped{
				Entry: entry,
				Err:   fmt.Errorf("%w: %s beyond %d rows", ErrSlotOutOfGrid, slots, geo.Rows),
			})
			continue
		}

		res.Placed = append(res.Placed, PlacedEntry{
			Entry:      entry,
			Slots:      slots,
			Rect:       geo.entryRect(entry.DayOfWeek, slots.Start, slots.End),
			ColorIndex: next.assign(entry.Title, e.opts.PaletteSize),
		})
	}

	for i := range res.Placed {
		for j := i + 1; j < len(res.Placed); j++ {
			a, b := res.Placed[i], res.Placed[j]
			if course.Overlaps(a.Entry.DayOfWeek, a.Slots, b.Entry.DayOfWeek, b.Slots) {
				res.Conflicts = append(res.Conflicts, Conflict{First: i, Second: j})
			}
		}
	}

	res.Colors = next
	return res, nil
}

func (g Geometry) entryRect(day, start, end int) Rect {
	return Rect{
		X: g.LabelWidth + (day-1)*g.DayWidth + g.Padding,
		Y: g.HeaderHeight + (start-1)*g.RowHeight + g.Padding,
		W: g.DayWidth - 2*g.Padding,
		H: (end-start+1)*g.RowHeight - 2*g.Padding,
	}
}
