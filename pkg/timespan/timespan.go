// Package timespan models naive wall-clock date and time ranges.
//
// Values carry no time zone: a Date is a calendar day and a Clock is the number
// of minutes since midnight. Spans never cross midnight.
package timespan

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	minutesPerDay  = 24 * 60
	minutesPerHour = 60
)

var (
	// ErrInvalidSpan reports a span whose start is not strictly before its end.
	ErrInvalidSpan = errors.New("start time must be before end time")
	// ErrCrossesMidnight reports clock arithmetic that would wrap into the next day.
	ErrCrossesMidnight = errors.New("time range crosses midnight")
)

// Date is a calendar day without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

// MustDate is ParseDate for literals.
func MustDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// DaysUntil returns the number of days from d to other (negative if other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or a full RFC3339 timestamp.
func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := parseDateOrTimestamp(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timespan.Date", src)
	}
}

func (d *Date) scanString(raw string) error {
	parsed, err := parseDateOrTimestamp(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// parseDateOrTimestamp accepts YYYY-MM-DD or a complete RFC3339 timestamp,
// whose calendar day is kept.
func parseDateOrTimestamp(raw string) (Date, error) {
	if len(raw) <= len(dateLayout) {
		return ParseDate(raw)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Clock is a time of day in minutes since midnight.
type Clock int

var clockPattern = regexp.MustCompile(`^([0-9]{2}):([0-9]{2})(?::([0-9]{2}))?$`)

// ParseClock parses HH:MM or HH:MM:SS. Seconds are discarded.
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	parts := clockPattern.FindStringSubmatch(raw)
	if parts == nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	h, _ := strconv.Atoi(parts[1])
	m, _ := strconv.Atoi(parts[2])
	s := 0
	if parts[3] != "" {
		s, _ = strconv.Atoi(parts[3])
	}
	if h > 23 || m > 59 || s > 59 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	return Clock(h*minutesPerHour + m), nil
}

// MustClock is ParseClock for literals.
func MustClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / minutesPerHour }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % minutesPerHour }

// AddMinutes adds n minutes, wrapping modulo 24 hours. Callers that must not
// wrap use Advance.
func (c Clock) AddMinutes(n int) Clock {
	v := (int(c) + n) % minutesPerDay
	if v < 0 {
		v += minutesPerDay
	}
	return Clock(v)
}

// Advance adds n minutes and fails if the result leaves the day. Reaching
// exactly midnight is also rejected since 24:00 is not a valid Clock.
func (c Clock) Advance(n int) (Clock, error) {
	v := int(c) + n
	if v < 0 || v >= minutesPerDay {
		return 0, ErrCrossesMidnight
	}
	return Clock(v), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON encodes the clock as "HH:MM".
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes "HH:MM" or "HH:MM:SS".
func (c *Clock) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner for TIME columns.
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = Clock(v.Hour()*minutesPerHour + v.Minute())
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into timespan.Clock", src)
	}
}

func (c *Clock) scanString(raw string) error {
	// lib/pq may append fractional seconds to TIME values.
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		raw = raw[:idx]
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c Clock) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// Span is a half-open [Start, End) range on a single Date.
type Span struct {
	Date  Date
	Start Clock
	End   Clock
}

// New builds a span without validating it.
func New(date Date, start, end Clock) Span {
	return Span{Date: date, Start: start, End: end}
}

// Validate enforces Start < End.
func (s Span) Validate() error {
	if s.Start >= s.End {
		return ErrInvalidSpan
	}
	return nil
}

// Less orders spans by (Date, Start).
func (s Span) Less(other Span) bool {
	if c := s.Date.Compare(other.Date); c != 0 {
		return c < 0
	}
	return s.Start < other.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%s %s-%s", s.Date, s.Start, s.End)
}

// Overlaps reports whether a and b share any time on the same date.
func Overlaps(a, b Span) bool {
	if a.Date != b.Date {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether inner lies entirely within outer.
func Contains(outer, inner Span) bool {
	if outer.Date != inner.Date {
		return false
	}
	return outer.Start <= inner.Start && inner.End <= outer.End
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
