package importer

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/javiermolinar/coursetable/internal/course"
)

// ErrUnknownWeekFormat is returned for week text that matches no known schema.
var ErrUnknownWeekFormat = errors.New("unknown week format")

var weekTypeAliases = map[string]course.WeekKind{
	"单周": course.WeeksOdd, "单": course.WeeksOdd, "odd": course.WeeksOdd,
	"双周": course.WeeksEven, "双": course.WeeksEven, "even": course.WeeksEven,
	"全周": course.WeeksAll, "全": course.WeeksAll, "每周": course.WeeksAll, "每": course.WeeksAll, "all": course.WeeksAll,
}

var (
	weekRangeRe  = regexp.MustCompile(`^(\d+)\s*[-~－至]\s*(\d+)\s*(单|双)?$`)
	weekSingleRe = regexp.MustCompile(`^(\d+)$`)
	weekSplitRe  = regexp.MustCompile(`[,，、;；\s]+`)
)

// NormalizeWeeks converts timetable week text into a WeekPattern.
//
// weekType is the optional parity column ("单周", "双周", "全周"). An odd or
// even type wins over the week list. Otherwise weeks may be a comma list
// ("1,3,5"), a range ("1-16周"), a bare week ("5"), a mix of those, or a
// parity word itself. Lists equal to every, every odd, or every even week of
// the term collapse to the matching pattern.
func NormalizeWeeks(weeks, weekType string, totalWeeks int) (course.WeekPattern, error) {
	if totalWeeks <= 0 {
		totalWeeks = course.DefaultTotalWeeks
	}

	if kind, ok := weekKind(weekType); ok {
		switch kind {
		case course.WeeksOdd:
			return course.OddWeeks(), nil
		case course.WeeksEven:
			return course.EvenWeeks(), nil
		}
	} else if strings.TrimSpace(weekType) != "" {
		return course.WeekPattern{}, fmt.Errorf("%w: week type %q", ErrUnknownWeekFormat, weekType)
	}

	text := cleanWeeks(weeks)
	if text == "" {
		return course.AllWeeks(), nil
	}
	if kind, ok := weekKind(text); ok {
		return course.WeekPattern{Kind: kind}, nil
	}

	var set []int
	for _, part := range weekSplitRe.Split(text, -1) {
		if part == "" {
			continue
		}
		ws, err := parseWeekPart(part, totalWeeks)
		if err != nil {
			return course.WeekPattern{}, fmt.Errorf("%w: %q", err, weeks)
		}
		set = append(set, ws...)
	}
	if len(set) == 0 {
		return course.WeekPattern{}, fmt.Errorf("%w: %q", ErrUnknownWeekFormat, weeks)
	}

	p := course.ExplicitWeeks(set...)
	if err := p.Validate(totalWeeks); err != nil {
		return course.WeekPattern{}, err
	}
	return collapse(p, totalWeeks), nil
}

func weekKind(s string) (course.WeekKind, bool) {
	k, ok := weekTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// cleanWeeks strips decorations such as "第", "周" and parentheses.
func cleanWeeks(s string) string {
	s = strings.TrimSpace(s)
	r := strings.NewReplacer("第", "", "周", "", "(", "", ")", "", "（", "", "）", "")
	return strings.TrimSpace(r.Replace(s))
}

func parseWeekPart(part string, totalWeeks int) ([]int, error) {
	if m := weekSingleRe.FindStringSubmatch(part); m != nil {
		n, err := weekNumber(m[1], totalWeeks)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	}
	m := weekRangeRe.FindStringSubmatch(part)
	if m == nil {
		return nil, ErrUnknownWeekFormat
	}
	from, err := weekNumber(m[1], totalWeeks)
	if err != nil {
		return nil, err
	}
	to, err := weekNumber(m[2], totalWeeks)
	if err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("%w: reversed range %d-%d", ErrUnknownWeekFormat, from, to)
	}
	var out []int
	for w := from; w <= to; w++ {
		switch {
		case m[3] == "单" && w%2 == 0:
			continue
		case m[3] == "双" && w%2 == 1:
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// weekNumber parses a week bound and checks it lies in 1..totalWeeks, so
// ranges are never expanded past the term.
func weekNumber(s string, totalWeeks int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > totalWeeks {
		return 0, fmt.Errorf("%w: week %s outside 1-%d", course.ErrInvalidWeekPattern, s, totalWeeks)
	}
	return n, nil
}

// collapse turns explicit sets that cover a whole parity class of the term
// into the structural pattern.
func collapse(p course.WeekPattern, totalWeeks int) course.WeekPattern {
	for _, candidate := range []course.WeekPattern{course.AllWeeks(), course.OddWeeks(), course.EvenWeeks()} {
		if slices.Equal(p.Weeks, candidate.ActiveWeeks(totalWeeks)) {
			return candidate
		}
	}
	return p
}
