package course

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultTotalWeeks is the term length used when none is configured.
const DefaultTotalWeeks = 18

// WeekKind selects how a WeekPattern decides which weeks are active.
type WeekKind int

const (
	WeeksAll WeekKind = iota
	WeeksOdd
	WeeksEven
	WeeksExplicit
)

// WeekPattern describes the term weeks an entry meets in.
// The zero value is "every week".
type WeekPattern struct {
	Kind WeekKind
	// Weeks lists the active weeks. Only used by WeeksExplicit;
	// ExplicitWeeks keeps it sorted and free of duplicates.
	Weeks []int
}

// AllWeeks returns a pattern active in every week of the term.
func AllWeeks() WeekPattern { return WeekPattern{Kind: WeeksAll} }

// OddWeeks returns a pattern active in weeks 1, 3, 5, ...
func OddWeeks() WeekPattern { return WeekPattern{Kind: WeeksOdd} }

// EvenWeeks returns a pattern active in weeks 2, 4, 6, ...
func EvenWeeks() WeekPattern { return WeekPattern{Kind: WeeksEven} }

// ExplicitWeeks returns a pattern active exactly in the given weeks.
func ExplicitWeeks(weeks ...int) WeekPattern {
	set := slices.Clone(weeks)
	slices.Sort(set)
	return WeekPattern{Kind: WeeksExplicit, Weeks: slices.Compact(set)}
}

// IsActiveInWeek reports whether the pattern includes week. A non-positive
// totalWeeks leaves the term unbounded above.
func (p WeekPattern) IsActiveInWeek(week, totalWeeks int) bool {
	if week < 1 {
		return false
	}
	if totalWeeks > 0 && week > totalWeeks {
		return false
	}
	switch p.Kind {
	case WeeksAll:
		return true
	case WeeksOdd:
		return week%2 == 1
	case WeeksEven:
		return week%2 == 0
	case WeeksExplicit:
		return slices.Contains(p.Weeks, week)
	default:
		return false
	}
}

// ActiveWeeks lists the active weeks in [1, totalWeeks].
func (p WeekPattern) ActiveWeeks(totalWeeks int) []int {
	var weeks []int
	for w := 1; w <= totalWeeks; w++ {
		if p.IsActiveInWeek(w, totalWeeks) {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

// Validate checks that explicit weeks fall inside the term.
func (p WeekPattern) Validate(totalWeeks int) error {
	switch p.Kind {
	case WeeksAll, WeeksOdd, WeeksEven:
		return nil
	case WeeksExplicit:
		if len(p.Weeks) == 0 {
			return fmt.Errorf("%w: explicit pattern has no weeks", ErrInvalidWeekPattern)
		}
		for _, w := range p.Weeks {
			if w < 1 || (totalWeeks > 0 && w > totalWeeks) {
				return fmt.Errorf("%w: week %d outside 1-%d", ErrInvalidWeekPattern, w, totalWeeks)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidWeekPattern, p.Kind)
	}
}

// Equal reports whether two patterns select the same weeks by construction.
func (p WeekPattern) Equal(o WeekPattern) bool {
	return p.Kind == o.Kind && slices.Equal(p.Weeks, o.Weeks)
}

// String renders the canonical form: "all", "odd", "even" or "1,3,5".
func (p WeekPattern) String() string {
	switch p.Kind {
	case WeeksAll:
		return "all"
	case WeeksOdd:
		return "odd"
	case WeeksEven:
		return "even"
	case WeeksExplicit:
		parts := make([]string, len(p.Weeks))
		for i, w := range p.Weeks {
			parts[i] = strconv.Itoa(w)
		}
		return strings.Join(parts, ",")
	default:
		return "unknown"
	}
}

// ParseWeekPattern parses the canonical form produced by String.
func ParseWeekPattern(s string) (WeekPattern, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all":
		return AllWeeks(), nil
	case "odd":
		return OddWeeks(), nil
	case "even":
		return EvenWeeks(), nil
	}

	parts := strings.Split(s, ",")
	weeks := make([]int, 0, len(parts))
	for _, part := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return WeekPattern{}, fmt.Errorf("%w: %q", ErrInvalidWeekPattern, s)
		}
		weeks = append(weeks, w)
	}
	return ExplicitWeeks(weeks...), nil
}

// MarshalText implements encoding.TextMarshaler.
func (p WeekPattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *WeekPattern) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekPattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SharesWeek reports whether two patterns have an active week in common.
func SharesWeek(a, b WeekPattern, totalWeeks int) bool {
	if totalWeeks <= 0 {
		totalWeeks = DefaultTotalWeeks
	}
	for w := 1; w <= totalWeeks; w++ {
		if a.IsActiveInWeek(w, totalWeeks) && b.IsActiveInWeek(w, totalWeeks) {
			return true
		}
	}
	return false
}
