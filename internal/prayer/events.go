package prayer

import (
	"strings"
	"time"
)

// Event durations fixed by the nature of the timing itself.
const (
	sunriseDuration  = 10 * time.Minute
	midnightDuration = 1 * time.Minute
	iqamaDuration    = 10 * time.Minute
)

// EventOptions are the rendering-only knobs that shape the event stream.
// They affect the response cache and ETag but never the month cache.
type EventOptions struct {
	// Indices selects from CanonicalEvents; nil means all seven.
	Indices []int
	// Duration is the default event length in minutes.
	Duration int
	// Alarms holds signed minute offsets: positive fires before the event
	// start, negative after, zero exactly at start.
	Alarms []int
	Lang   string

	RamadanMode     bool
	SuhoorDuration  int
	IftarDuration   int
	TraweehDuration int

	// IqamaOffsets holds minutes per adhan prayer, in AdhanPrayers order.
	IqamaOffsets []int
	Jumuah       bool
}

// Event is one calendar entry, ready for rendering.
type Event struct {
	Name    string    `json:"name"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Alarms  []int     `json:"alarms,omitempty"`
}

// BuildEvents walks the sorted day list and emits the calendar event stream:
// the selected standard prayers, then derived Ramadan and iqama events.
// Days strictly before today never yield events, even when cached data
// includes backfilled days. Output is deterministic for identical inputs;
// the response cache and ETag depend on that.
func BuildEvents(days []Day, opts EventOptions, now time.Time) []Event {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	selected := selectedEvents(opts.Indices)

	var events []Event
	for _, day := range days {
		date, err := day.GregorianTime()
		if err != nil || date.Before(today) {
			continue
		}

		loc := dayLocation(day)
		events = append(events, dayEvents(day, date, loc, selected, opts)...)
	}
	return events
}

func dayEvents(day Day, date time.Time, loc *time.Location, selected []string, opts EventOptions) []Event {
	var events []Event

	starts := make(map[string]time.Time, len(day.Timings))
	for _, name := range CanonicalEvents {
		if t, ok := timingAt(day, date, loc, name); ok {
			starts[name] = t
		}
	}

	for _, name := range selected {
		start, ok := starts[name]
		if !ok {
			continue
		}
		summary := DisplayName(name, opts.Lang)
		if opts.Jumuah && name == "Dhuhr" && start.Weekday() == time.Friday {
			summary = DisplayName("Jumuah", opts.Lang)
		}
		events = append(events, Event{
			Name:    name,
			Summary: summary,
			Start:   start,
			End:     start.Add(eventDuration(name, opts.Duration)),
			Alarms:  opts.Alarms,
		})
	}

	for i, offset := range opts.IqamaOffsets {
		if i >= len(AdhanPrayers) || offset <= 0 {
			continue
		}
		prayer := AdhanPrayers[i]
		start, ok := starts[prayer]
		if !ok {
			continue
		}
		iqama := start.Add(time.Duration(offset) * time.Minute)
		events = append(events, Event{
			Name:    "Iqama-" + prayer,
			Summary: DisplayName("Iqama", opts.Lang) + " (" + DisplayName(prayer, opts.Lang) + ")",
			Start:   iqama,
			End:     iqama.Add(iqamaDuration),
			Alarms:  opts.Alarms,
		})
	}

	if opts.RamadanMode && day.IsRamadan() {
		events = append(events, ramadanEvents(starts, opts)...)
	}

	return events
}

// ramadanEvents layers Suhoor, Iftar and Tarawih on top of the standard
// events; none of them replaces Fajr, Maghrib or Isha.
func ramadanEvents(starts map[string]time.Time, opts EventOptions) []Event {
	var events []Event

	if fajr, ok := starts["Fajr"]; ok && opts.SuhoorDuration > 0 {
		// Suhoor ends exactly when Fajr begins.
		events = append(events, Event{
			Name:    "Suhoor",
			Summary: DisplayName("Suhoor", opts.Lang),
			Start:   fajr.Add(-time.Duration(opts.SuhoorDuration) * time.Minute),
			End:     fajr,
			Alarms:  opts.Alarms,
		})
	}

	if maghrib, ok := starts["Maghrib"]; ok && opts.IftarDuration > 0 {
		// Iftar begins where the Maghrib event ends.
		start := maghrib.Add(eventDuration("Maghrib", opts.Duration))
		events = append(events, Event{
			Name:    "Iftar",
			Summary: DisplayName("Iftar", opts.Lang),
			Start:   start,
			End:     start.Add(time.Duration(opts.IftarDuration) * time.Minute),
			Alarms:  opts.Alarms,
		})
	}

	if isha, ok := starts["Isha"]; ok && opts.TraweehDuration > 0 {
		start := isha.Add(eventDuration("Isha", opts.Duration))
		events = append(events, Event{
			Name:    "Tarawih",
			Summary: DisplayName("Tarawih", opts.Lang),
			Start:   start,
			End:     start.Add(time.Duration(opts.TraweehDuration) * time.Minute),
			Alarms:  opts.Alarms,
		})
	}

	return events
}

func selectedEvents(indices []int) []string {
	if len(indices) == 0 {
		return CanonicalEvents
	}
	var names []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(CanonicalEvents) {
			names = append(names, CanonicalEvents[idx])
		}
	}
	if len(names) == 0 {
		return CanonicalEvents
	}
	return names
}

func eventDuration(name string, defaultMinutes int) time.Duration {
	switch name {
	case "Sunrise":
		return sunriseDuration
	case "Midnight":
		return midnightDuration
	}
	if defaultMinutes <= 0 {
		defaultMinutes = 25
	}
	return time.Duration(defaultMinutes) * time.Minute
}

// timingAt combines the day's date with one "HH:MM" timing in the location
// timezone. The provider sometimes suffixes a zone like "05:12 (EET)"; the
// suffix is stripped.
func timingAt(day Day, date time.Time, loc *time.Location, name string) (time.Time, bool) {
	raw, ok := day.Timings[name]
	if !ok {
		return time.Time{}, false
	}
	if idx := strings.IndexByte(raw, ' '); idx > 0 {
		raw = raw[:idx]
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

func dayLocation(day Day) *time.Location {
	if day.Meta.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(day.Meta.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
