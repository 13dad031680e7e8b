package prayer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Day is one calendar day's prayer data, as returned by the upstream
// provider. Timings is kept as a map so extra upstream entries (Sunset,
// Imsak, Firstthird, ...) survive a cache round trip.
type Day struct {
	Timings map[string]string `json:"timings"`
	Date    DateInfo          `json:"date"`
	Meta    Meta              `json:"meta"`
}

// DateInfo contains the Hijri and Gregorian representations of a day.
type DateInfo struct {
	Readable  string        `json:"readable,omitempty"`
	Hijri     HijriDate     `json:"hijri"`
	Gregorian GregorianDate `json:"gregorian"`
}

// HijriDate represents the Hijri (Islamic) date from the API response.
type HijriDate struct {
	Date  string     `json:"date,omitempty"` // e.g. "10-09-1445"
	Month HijriMonth `json:"month"`
	Year  string     `json:"year,omitempty"`
}

// HijriMonth represents the month in the Hijri calendar. Month 9 is Ramadan.
type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en,omitempty"`
	Ar     string `json:"ar,omitempty"`
}

// GregorianDate carries the "DD-MM-YYYY" date string the cache keys on.
type GregorianDate struct {
	Date string `json:"date"`
}

// Meta contains request metadata returned by the API.
type Meta struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Timezone  string  `json:"timezone"`
}

// GregorianTime parses the day's Gregorian date. The result carries no
// timezone; it is a calendar date.
func (d Day) GregorianTime() (time.Time, error) {
	t, err := time.Parse("02-01-2006", d.Date.Gregorian.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid gregorian date %q: %w", d.Date.Gregorian.Date, err)
	}
	return t, nil
}

// YearMonth returns the day's "YYYY-MM" cache-key fragment. Days with an
// unparseable date land in an empty group the resolver discards.
func (d Day) YearMonth() string {
	t, err := d.GregorianTime()
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// IsRamadan reports whether the day falls in the Hijri month of Ramadan.
func (d Day) IsRamadan() bool {
	return d.Date.Hijri.Month.Number == 9
}

// Params are the upstream-affecting request parameters: they key the L1
// month cache and build the provider URL. Rendering-only knobs live on
// CalendarQuery and never reach this struct.
type Params struct {
	Address                  string
	Latitude                 *float64
	Longitude                *float64
	Method                   int
	School                   int
	Shafaq                   string
	Tune                     string
	MidnightMode             *int
	LatitudeAdjustmentMethod *int
	Adjustment               *int
}

// CalendarResponse is the upstream envelope. Data stays raw until the
// body-level code has been checked, because the provider puts an error
// string where the array normally is.
type CalendarResponse struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Days decodes the data array. Call only after checking Code; error
// responses carry a string payload here.
func (r CalendarResponse) Days() ([]Day, error) {
	var days []Day
	if err := json.Unmarshal(r.Data, &days); err != nil {
		return nil, fmt.Errorf("unexpected data payload: %w", err)
	}
	return days, nil
}
