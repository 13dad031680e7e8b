package prayer

import (
	"fmt"
	"strings"
)

const icsProdID = "-//praycalendar//Prayer Times//EN"

// RenderICS serializes the event stream as an iCalendar document. Output is
// byte-for-byte deterministic for identical inputs so that response caching
// and ETags stay stable. Lines end with CRLF per RFC 5545.
func RenderICS(events []Event, calName, tz string) []byte {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+icsProdID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(calName))
	if tz != "" {
		writeLine(&b, "X-WR-TIMEZONE:"+tz)
	}

	for _, ev := range events {
		writeEvent(&b, ev)
	}

	writeLine(&b, "END:VCALENDAR")
	return []byte(b.String())
}

func writeEvent(b *strings.Builder, ev Event) {
	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, "UID:"+eventUID(ev))
	writeLine(b, "DTSTAMP:"+ev.Start.UTC().Format("20060102T150405Z"))
	writeLine(b, "DTSTART;TZID="+ev.Start.Location().String()+":"+ev.Start.Format("20060102T150405"))
	writeLine(b, "DTEND;TZID="+ev.End.Location().String()+":"+ev.End.Format("20060102T150405"))
	writeLine(b, "SUMMARY:"+escapeText(ev.Summary))
	for _, alarm := range ev.Alarms {
		writeAlarm(b, alarm)
	}
	writeLine(b, "END:VEVENT")
}

// writeAlarm emits a display alarm. Positive offsets fire before the event
// start, negative after, zero at the start itself.
func writeAlarm(b *strings.Builder, minutes int) {
	writeLine(b, "BEGIN:VALARM")
	writeLine(b, "ACTION:DISPLAY")
	writeLine(b, "DESCRIPTION:Reminder")
	switch {
	case minutes > 0:
		writeLine(b, fmt.Sprintf("TRIGGER:-PT%dM", minutes))
	case minutes < 0:
		writeLine(b, fmt.Sprintf("TRIGGER:PT%dM", -minutes))
	default:
		writeLine(b, "TRIGGER:PT0M")
	}
	writeLine(b, "END:VALARM")
}

// eventUID derives a stable identifier from the event date and name so
// subscribed clients see updates instead of duplicates across refreshes.
func eventUID(ev Event) string {
	slug := strings.ToLower(strings.ReplaceAll(ev.Name, " ", "-"))
	return ev.Start.Format("20060102T1504") + "-" + slug + "@praycalendar"
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// escapeText escapes SUMMARY-class values per RFC 5545 section 3.3.11.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// CalendarName builds the X-WR-CALNAME for a request.
func CalendarName(address string, lang string) string {
	base := "Prayer Times"
	if lang == "ar" {
		base = "مواقيت الصلاة"
	}
	if address == "" {
		return base
	}
	return base + " - " + address
}

// FirstTimezone returns the timezone of the first day carrying one, used for
// the calendar-level X-WR-TIMEZONE hint.
func FirstTimezone(days []Day) string {
	for _, day := range days {
		if day.Meta.Timezone != "" {
			return day.Meta.Timezone
		}
	}
	return ""
}

// EventDocument is the JSON rendering of the calendar, mirroring the ICS
// content for API consumers. It carries no request-time fields so the same
// inputs always serialize to the same bytes.
type EventDocument struct {
	Calendar string  `json:"calendar"`
	Timezone string  `json:"timezone,omitempty"`
	Events   []Event `json:"events"`
	Count    int     `json:"count"`
}
