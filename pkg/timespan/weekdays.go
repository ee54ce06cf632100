package timespan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Weekdays is a set of days of the week.
type Weekdays uint8

// AllWeekdays contains every day.
const AllWeekdays Weekdays = 1<<7 - 1

var weekdayNames = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekdaysOf builds a set from the given days.
func WeekdaysOf(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

// ParseWeekdays accepts a comma separated list of numbers (0=Sunday .. 6=Saturday,
// 7 is also Sunday) or Spanish/English day names. "all" and "todos" select every day.
func ParseWeekdays(raw string) (Weekdays, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "all" || raw == "todos" {
		return AllWeekdays, nil
	}
	var w Weekdays
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 7 {
				return 0, fmt.Errorf("invalid weekday %q", part)
			}
			w |= 1 << uint(n%7)
			continue
		}
		day, ok := weekdayNames[part]
		if !ok {
			return 0, fmt.Errorf("invalid weekday %q", part)
		}
		w |= 1 << uint(day)
	}
	return w, nil
}

// Has reports whether day is in the set.
func (w Weekdays) Has(day time.Weekday) bool {
	return w&(1<<uint(day)) != 0
}

// Empty reports whether no day is selected.
func (w Weekdays) Empty() bool {
	return w&AllWeekdays == 0
}

// All reports whether every day is selected.
func (w Weekdays) All() bool {
	return w&AllWeekdays == AllWeekdays
}

// Days lists the selected days from Sunday to Saturday.
func (w Weekdays) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (w Weekdays) String() string {
	days := w.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// ExpandDates returns every date in [from, to] whose weekday is in the set.
func ExpandDates(from, to Date, days Weekdays) []Date {
	if to.Before(from) {
		return nil
	}
	var out []Date
	for d := from; !to.Before(d); d = d.AddDays(1) {
		if days.Has(d.Weekday()) {
			out = append(out, d)
		}
	}
	return out
}

// SortSpans orders spans by (Date, Start) in place.
func SortSpans(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Less(spans[j]) })
}
