package grid

import "maps"

// ColorAssignment maps course titles to palette indices in first-seen order.
// It is a value owned by the caller: Layout never mutates the assignment it is
// given and returns an updated copy instead. Reset it with NewColorAssignment
// when the entry collection is replaced wholesale.
type ColorAssignment struct {
	order map[string]int
}

// NewColorAssignment returns an empty assignment.
func NewColorAssignment() ColorAssignment {
	return ColorAssignment{}
}

// Len returns the number of distinct titles seen.
func (c ColorAssignment) Len() int {
	return len(c.order)
}

// Lookup returns the palette index of title, if it has been assigned.
func (c ColorAssignment) Lookup(title string, paletteSize int) (int, bool) {
	n, ok := c.order[title]
	if !ok {
		return 0, false
	}
	return wrap(n, paletteSize), true
}

// Clone returns an independent copy.
func (c ColorAssignment) Clone() ColorAssignment {
	if c.order == nil {
		return ColorAssignment{}
	}
	return ColorAssignment{order: maps.Clone(c.order)}
}

// assign returns the index of title, registering it when new. Only call it on
// a clone owned by the current layout pass.
func (c *ColorAssignment) assign(title string, paletteSize int) int {
	if title == "" {
		return 0
	}
	if n, ok := c.order[title]; ok {
		return wrap(n, paletteSize)
	}
	if c.order == nil {
		c.order = make(map[string]int)
	}
	n := len(c.order)
	c.order[title] = n
	return wrap(n, paletteSize)
}

func wrap(n, size int) int {
	if size <= 0 {
		size = DefaultPaletteSize
	}
	return n % size
}
