package course

import (
	"strconv"
	"strings"
	"time"
)

// Days per teaching week.
const DaysPerWeek = 7

var dayNames = [DaysPerWeek + 1]string{"", "周一", "周二", "周三", "周四", "周五", "周六", "周日"}

var dayAliases = map[string]int{
	"monday": 1, "mon": 1, "周一": 1, "星期一": 1, "一": 1,
	"tuesday": 2, "tue": 2, "周二": 2, "星期二": 2, "二": 2,
	"wednesday": 3, "wed": 3, "周三": 3, "星期三": 3, "三": 3,
	"thursday": 4, "thu": 4, "周四": 4, "星期四": 4, "四": 4,
	"friday": 5, "fri": 5, "周五": 5, "星期五": 5, "五": 5,
	"saturday": 6, "sat": 6, "周六": 6, "星期六": 6, "六": 6,
	"sunday": 7, "sun": 7, "周日": 7, "星期日": 7, "周天": 7, "星期天": 7, "日": 7,
}

// ValidDay reports whether day is in 1..7.
func ValidDay(day int) bool {
	return day >= 1 && day <= DaysPerWeek
}

// DayName returns the Chinese short name for day ("周一"), or "?" when out of range.
func DayName(day int) string {
	if !ValidDay(day) {
		return "?"
	}
	return dayNames[day]
}

// ParseDay accepts 1-7, English names and abbreviations, and Chinese names.
func ParseDay(s string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(key); err == nil {
		if !ValidDay(n) {
			return 0, ErrInvalidDay
		}
		return n, nil
	}
	if d, ok := dayAliases[key]; ok {
		return d, nil
	}
	return 0, ErrInvalidDay
}

// DayOf returns the 1..7 day number for t (Monday = 1).
func DayOf(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
