// Package timeslot decodes and encodes the textual period codes used by the
// timetable ("1-2节", "第3节", "5") and maps periods to wall-clock times.
package timeslot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxSlots is the number of periods in a teaching day.
const MaxSlots = 12

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("invalid slot code")

// ParseError reports a slot code that could not be decoded.
type ParseError struct {
	Code   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid slot code %q", e.Code)
	}
	return fmt.Sprintf("invalid slot code %q: %s", e.Code, e.Reason)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Range is an inclusive span of periods.
type Range struct {
	Start int
	End   int
}

// Single returns a range covering one period.
func Single(slot int) Range {
	return Range{Start: slot, End: slot}
}

// Len returns the number of periods in the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Valid reports whether the range is ordered and within [1, MaxSlots].
func (r Range) Valid() bool {
	return r.Start >= 1 && r.Start <= r.End && r.End <= MaxSlots
}

// Contains reports whether slot lies inside the range.
func (r Range) Contains(slot int) bool {
	return slot >= r.Start && slot <= r.End
}

// String returns the canonical code.
func (r Range) String() string {
	return Encode(r)
}

// Label returns the code followed by its wall-clock span, e.g. "1-2节 08:00-09:35".
func (r Range) Label() string {
	if !r.Valid() {
		return Encode(r)
	}
	return fmt.Sprintf("%s %s-%s", Encode(r), Periods[r.Start].Start, Periods[r.End].End)
}

// matcher is one accepted slot code shape.
type matcher struct {
	name string
	re   *regexp.Regexp
	// build converts the submatches into a range.
	build func(m []string) (Range, error)
}

// matchers are tried in order. The range form must run before the bare
// integer form.
var matchers = []matcher{
	{
		name: "range",
		re:   regexp.MustCompile(`^第?\s*(\d+)\s*[-~－]\s*(\d+)\s*节?$`),
		build: func(m []string) (Range, error) {
			start, err := atoi(m[1])
			if err != nil {
				return Range{}, err
			}
			end, err := atoi(m[2])
			if err != nil {
				return Range{}, err
			}
			return Range{Start: start, End: end}, nil
		},
	},
	{
		name: "ordinal",
		re:   regexp.MustCompile(`^第\s*(\d+)\s*节$`),
		build: func(m []string) (Range, error) {
			n, err := atoi(m[1])
			if err != nil {
				return Range{}, err
			}
			return Single(n), nil
		},
	},
	{
		name: "bare",
		re:   regexp.MustCompile(`^(\d+)$`),
		build: func(m []string) (Range, error) {
			n, err := atoi(m[1])
			if err != nil {
				return Range{}, err
			}
			return Single(n), nil
		},
	},
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("number out of range: %s", s)
	}
	return n, nil
}

// Decode parses a slot code into a Range. Codes that match no known shape,
// or that describe a reversed or out-of-day range, yield a *ParseError.
func Decode(code string) (Range, error) {
	trimmed := strings.TrimSpace(code)
	for _, m := range matchers {
		sub := m.re.FindStringSubmatch(trimmed)
		if sub == nil {
			continue
		}
		r, err := m.build(sub)
		if err != nil {
			return Range{}, &ParseError{Code: code, Reason: err.Error()}
		}
		if r.Start > r.End {
			return Range{}, &ParseError{Code: code, Reason: "start after end"}
		}
		if !r.Valid() {
			return Range{}, &ParseError{Code: code, Reason: fmt.Sprintf("periods must be within 1-%d", MaxSlots)}
		}
		return r, nil
	}
	return Range{}, &ParseError{Code: code}
}

// Encode renders r in the canonical "<start>-<end>节" form.
func Encode(r Range) string {
	return fmt.Sprintf("%d-%d节", r.Start, r.End)
}
