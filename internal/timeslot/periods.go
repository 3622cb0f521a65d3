package timeslot

import "fmt"

// Period is the wall-clock span of one slot, in "HH:MM" form.
type Period struct {
	Start string
	End   string
}

// Periods maps slot index to its wall-clock span. Index 0 is unused.
var Periods = [MaxSlots + 1]Period{
	{},
	{Start: "08:00", End: "08:45"},
	{Start: "08:50", End: "09:35"},
	{Start: "09:50", End: "10:35"},
	{Start: "10:40", End: "11:25"},
	{Start: "11:30", End: "12:15"},
	{Start: "13:45", End: "14:30"},
	{Start: "14:35", End: "15:20"},
	{Start: "15:35", End: "16:20"},
	{Start: "16:25", End: "17:10"},
	{Start: "18:30", End: "19:15"},
	{Start: "19:25", End: "20:10"},
	{Start: "20:20", End: "21:05"},
}

// StartOf returns the hour and minute a slot begins.
func StartOf(slot int) (hour, minute int, err error) {
	if slot < 1 || slot > MaxSlots {
		return 0, 0, fmt.Errorf("slot %d out of range 1-%d", slot, MaxSlots)
	}
	return clock(Periods[slot].Start)
}

// EndOf returns the hour and minute a slot ends.
func EndOf(slot int) (hour, minute int, err error) {
	if slot < 1 || slot > MaxSlots {
		return 0, 0, fmt.Errorf("slot %d out of range 1-%d", slot, MaxSlots)
	}
	return clock(Periods[slot].End)
}

func clock(hhmm string) (int, int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, 0, fmt.Errorf("malformed time %q", hhmm)
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h, m, nil
}
