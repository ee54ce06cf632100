package timespan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(date, start, end string) Span {
	return New(MustDate(date), MustClock(start), MustClock(end))
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)

	c, err = ParseClock("17:05:59")
	require.NoError(t, err)
	assert.Equal(t, "17:05", c.String())

	for _, bad := range []string{"", "24:00", "9", "10:60", "ab:cd", "10:00xyz", "+9:05", "-0:30", "9:05", "10:00:60", "10:00:00:00", "10:5"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}

	var c2 Clock
	assert.Error(t, json.Unmarshal([]byte(`"10:00xyz"`), &c2))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, "2025-01-07", d.AddDays(1).String())

	_, err = ParseDate("06/01/2025")
	assert.Error(t, err)

	cases := map[string]struct {
		raw  string
		want string
		ok   bool
	}{
		"plain date":         {raw: `"2025-01-06"`, want: "2025-01-06", ok: true},
		"rfc3339 timestamp":  {raw: `"2025-01-06T15:04:05-05:00"`, want: "2025-01-06", ok: true},
		"trailing garbage":   {raw: `"2025-01-06garbage"`},
		"partial timestamp":  {raw: `"2025-01-06T15"`},
		"single digit month": {raw: `"2025-1-06"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tc.raw), &d)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())
		})
	}

	var scanned Date
	assert.Error(t, scanned.Scan("2025-01-06garbage"))
	require.NoError(t, scanned.Scan("2025-01-06T00:00:00Z"))
	assert.Equal(t, "2025-01-06", scanned.String())
}

func TestSpanValidate(t *testing.T) {
	assert.NoError(t, span("2025-02-01", "10:00", "11:00").Validate())
	assert.ErrorIs(t, span("2025-02-01", "10:00", "09:00").Validate(), ErrInvalidSpan)
	assert.ErrorIs(t, span("2025-02-01", "10:00", "10:00").Validate(), ErrInvalidSpan)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := span("2025-02-01", "09:00", "10:00")
	assert.True(t, Overlaps(a, span("2025-02-01", "09:30", "10:30")))
	assert.True(t, Overlaps(a, span("2025-02-01", "08:00", "11:00")))
	assert.False(t, Overlaps(a, span("2025-02-01", "10:00", "11:00")))
	assert.False(t, Overlaps(a, span("2025-02-01", "08:00", "09:00")))
	assert.False(t, Overlaps(a, span("2025-02-02", "09:00", "10:00")))
}

func TestContains(t *testing.T) {
	w := span("2025-02-01", "09:00", "12:00")
	assert.True(t, Contains(w, span("2025-02-01", "09:00", "12:00")))
	assert.True(t, Contains(w, span("2025-02-01", "10:00", "11:00")))
	assert.False(t, Contains(w, span("2025-02-01", "11:30", "12:30")))
	assert.False(t, Contains(w, span("2025-02-02", "10:00", "11:00")))
}

func TestAddMinutesWrapsAdvanceDoesNot(t *testing.T) {
	late := MustClock("23:30")
	assert.Equal(t, "00:30", late.AddMinutes(60).String())
	assert.Equal(t, "23:00", MustClock("00:00").AddMinutes(-60).String())

	_, err := late.Advance(60)
	assert.ErrorIs(t, err, ErrCrossesMidnight)
	_, err = late.Advance(30)
	assert.ErrorIs(t, err, ErrCrossesMidnight)

	end, err := MustClock("10:00").Advance(60)
	require.NoError(t, err)
	assert.Equal(t, "11:00", end.String())
}

func TestExpandDatesWeekdayFilter(t *testing.T) {
	days := WeekdaysOf(time.Monday, time.Wednesday)
	dates := ExpandDates(MustDate("2025-01-06"), MustDate("2025-01-12"), days)
	require.Len(t, dates, 2)
	assert.Equal(t, "2025-01-06", dates[0].String())
	assert.Equal(t, "2025-01-08", dates[1].String())

	assert.Len(t, ExpandDates(MustDate("2025-01-06"), MustDate("2025-01-12"), AllWeekdays), 7)
	assert.Empty(t, ExpandDates(MustDate("2025-01-12"), MustDate("2025-01-06"), AllWeekdays))
}

func TestParseWeekdays(t *testing.T) {
	w, err := ParseWeekdays("1,3")
	require.NoError(t, err)
	assert.Equal(t, WeekdaysOf(time.Monday, time.Wednesday), w)

	w, err = ParseWeekdays("Lunes, miércoles, 7")
	require.NoError(t, err)
	assert.Equal(t, WeekdaysOf(time.Sunday, time.Monday, time.Wednesday), w)

	w, err = ParseWeekdays("todos")
	require.NoError(t, err)
	assert.True(t, w.All())

	w, err = ParseWeekdays("")
	require.NoError(t, err)
	assert.True(t, w.Empty())

	_, err = ParseWeekdays("funday")
	assert.Error(t, err)
}

func TestSlotsSkipBusy(t *testing.T) {
	window := span("2025-03-03", "09:00", "12:00")
	busy := []Span{span("2025-03-03", "10:00", "11:00")}

	slots := Slots(window, 60, 60, busy)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Start.String())
	assert.Equal(t, "11:00", slots[1].Start.String())

	half := Slots(window, 60, 30, busy)
	starts := make([]string, len(half))
	for i, s := range half {
		starts[i] = s.Start.String()
	}
	assert.Equal(t, []string{"09:00", "11:00"}, starts)
}

func TestFreeSlotsDeduplicatesOverlappingWindows(t *testing.T) {
	windows := []Span{
		span("2025-03-03", "09:00", "11:00"),
		span("2025-03-03", "10:00", "12:00"),
	}
	slots := FreeSlots(windows, 60, 60, nil)
	require.Len(t, slots, 3)
	assert.Equal(t, "09:00", slots[0].Start.String())
	assert.Equal(t, "10:00", slots[1].Start.String())
	assert.Equal(t, "11:00", slots[2].Start.String())
}

func TestJSONRoundTripOfContractFields(t *testing.T) {
	payload := struct {
		Fecha      Date  `json:"fecha"`
		HoraInicio Clock `json:"horaInicio"`
	}{}
	require.NoError(t, json.Unmarshal([]byte(`{"fecha":"2025-01-08","horaInicio":"09:00:00"}`), &payload))
	assert.Equal(t, "2025-01-08", payload.Fecha.String())
	assert.Equal(t, "09:00", payload.HoraInicio.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fecha":"2025-01-08","horaInicio":"09:00"}`, string(out))
}

func TestScanFromDriverValues(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-08", d.String())

	var c Clock
	require.NoError(t, c.Scan([]byte("14:30:00")))
	assert.Equal(t, "14:30", c.String())
	require.NoError(t, c.Scan("08:15:00.000000"))
	assert.Equal(t, "08:15", c.String())
}
