package grid

import "github.com/javiermolinar/coursetable/internal/course"

// HitTest returns the entry whose rectangle contains p, or nil.
// When rectangles overlap, the first one in placed wins.
func HitTest(placed []PlacedEntry, p Point) *course.Entry {
	if i := HitIndex(placed, p); i >= 0 {
		return placed[i].Entry
	}
	return nil
}

// HitIndex is HitTest returning the index into placed, or -1.
func HitIndex(placed []PlacedEntry, p Point) int {
	for i, pe := range placed {
		if pe.Rect.Contains(p) {
			return i
		}
	}
	return -1
}
