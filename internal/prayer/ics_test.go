package prayer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
ICS rendering test cases:
1) Output is byte-identical across runs for the same input
2) Every line ends with CRLF and the calendar envelope is complete
3) Alarm offsets map to signed VALARM triggers
4) Summary text is escaped per RFC 5545
5) UIDs are stable and unique per event
*/

func sampleEvents() []Event {
	loc, _ := time.LoadLocation("Africa/Cairo")
	start := time.Date(2026, 9, 15, 5, 12, 0, 0, loc)
	return []Event{
		{
			Name:    "Fajr",
			Summary: "Fajr",
			Start:   start,
			End:     start.Add(25 * time.Minute),
			Alarms:  []int{5, -10, 0},
		},
		{
			Name:    "Dhuhr",
			Summary: "Dhuhr",
			Start:   start.Add(7 * time.Hour),
			End:     start.Add(7*time.Hour + 25*time.Minute),
		},
	}
}

func TestRenderICS_Deterministic(t *testing.T) {
	events := sampleEvents()
	first := RenderICS(events, "Prayer Times - Cairo", "Africa/Cairo")
	second := RenderICS(events, "Prayer Times - Cairo", "Africa/Cairo")
	assert.Equal(t, first, second)
}

func TestRenderICS_Envelope(t *testing.T) {
	out := string(RenderICS(sampleEvents(), "Prayer Times - Cairo", "Africa/Cairo"))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "VERSION:2.0\r\n")
	assert.Contains(t, out, "X-WR-CALNAME:Prayer Times - Cairo\r\n")
	assert.Contains(t, out, "X-WR-TIMEZONE:Africa/Cairo\r\n")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 2, strings.Count(out, "END:VEVENT"))

	// Every line is CRLF-terminated, with no bare newlines.
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.NotContains(t, line, "\n")
	}
}

func TestRenderICS_EventFields(t *testing.T) {
	out := string(RenderICS(sampleEvents(), "Prayer Times", ""))

	assert.Contains(t, out, "DTSTART;TZID=Africa/Cairo:20260915T051200\r\n")
	assert.Contains(t, out, "DTEND;TZID=Africa/Cairo:20260915T053700\r\n")
	assert.Contains(t, out, "SUMMARY:Fajr\r\n")
	assert.NotContains(t, out, "X-WR-TIMEZONE")
}

func TestRenderICS_AlarmTriggers(t *testing.T) {
	out := string(RenderICS(sampleEvents(), "Prayer Times", ""))

	// 5 minutes before, 10 minutes after, exactly at start.
	assert.Contains(t, out, "TRIGGER:-PT5M\r\n")
	assert.Contains(t, out, "TRIGGER:PT10M\r\n")
	assert.Contains(t, out, "TRIGGER:PT0M\r\n")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VALARM"))
}

func TestRenderICS_EscapesSummary(t *testing.T) {
	events := sampleEvents()[:1]
	events[0].Summary = "Fajr; first, daily"

	out := string(RenderICS(events, "a,b;c", ""))
	assert.Contains(t, out, "SUMMARY:Fajr\\; first\\, daily\r\n")
	assert.Contains(t, out, "X-WR-CALNAME:a\\,b\\;c\r\n")
}

func TestRenderICS_StableUniqueUIDs(t *testing.T) {
	events := sampleEvents()
	out := string(RenderICS(events, "Prayer Times", ""))

	var uids []string
	for _, line := range strings.Split(out, "\r\n") {
		if strings.HasPrefix(line, "UID:") {
			uids = append(uids, line)
		}
	}
	require.Len(t, uids, 2)
	assert.NotEqual(t, uids[0], uids[1])
	assert.Contains(t, uids[0], "@praycalendar")

	// Re-rendering yields the same identifiers.
	again := string(RenderICS(events, "Prayer Times", ""))
	assert.Equal(t, strings.Count(out, uids[0]), strings.Count(again, uids[0]))
}

func TestCalendarName(t *testing.T) {
	assert.Equal(t, "Prayer Times", CalendarName("", "en"))
	assert.Equal(t, "Prayer Times - Cairo", CalendarName("Cairo", "en"))
	assert.Equal(t, "مواقيت الصلاة - Cairo", CalendarName("Cairo", "ar"))
}
