package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

/*
Location and cache tag test cases:
1) Address normalization is stable and idempotent
2) Coordinates round to two decimal places; absent coordinates yield NaN
3) CacheTag depends on every parameter and the local date
4) Cache-Control max-age scales down near local midnight
*/

func floatPtr(f float64) *float64 { return &f }

func TestNormalizeLocation_Address(t *testing.T) {
	p := Params{Address: "  Cairo, Egypt "}
	got := NormalizeLocation(p)
	assert.Equal(t, "cairo,-egypt", got)

	// Normalizing an already-normalized address changes nothing.
	assert.Equal(t, got, NormalizeLocation(Params{Address: got}))
}

func TestNormalizeLocation_WhitespaceRuns(t *testing.T) {
	assert.Equal(t, "new-york-city", NormalizeLocation(Params{Address: "New  York\tCity"}))
}

func TestNormalizeLocation_Coordinates(t *testing.T) {
	p := Params{Latitude: floatPtr(30.0444), Longitude: floatPtr(31.2357)}
	assert.Equal(t, "30.04,31.24", NormalizeLocation(p))
}

func TestNormalizeLocation_MissingCoordinates(t *testing.T) {
	assert.Equal(t, "NaN,NaN", NormalizeLocation(Params{}))
	assert.Equal(t, "12.00,NaN", NormalizeLocation(Params{Latitude: floatPtr(12)}))
}

// Address takes precedence over coordinates when both are supplied.
func TestNormalizeLocation_AddressWins(t *testing.T) {
	p := Params{Address: "Mecca", Latitude: floatPtr(21.42), Longitude: floatPtr(39.83)}
	assert.Equal(t, "mecca", NormalizeLocation(p))
}

func TestCacheTag_Deterministic(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	params := map[string]string{"location": "cairo,-egypt", "method": "5", "format": "ics"}

	tag1 := CacheTag(params, now)
	tag2 := CacheTag(params, now)
	assert.Equal(t, tag1, tag2)
	assert.Len(t, tag1, 16)
}

func TestCacheTag_ParameterSensitivity(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	base := map[string]string{"location": "cairo,-egypt", "method": "5"}
	changed := map[string]string{"location": "cairo,-egypt", "method": "4"}

	assert.NotEqual(t, CacheTag(base, now), CacheTag(changed, now))
}

func TestCacheTag_RollsOverAtMidnight(t *testing.T) {
	params := map[string]string{"location": "cairo,-egypt"}
	today := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	tomorrow := today.Add(2 * time.Minute)

	assert.NotEqual(t, CacheTag(params, today), CacheTag(params, tomorrow))
}

// The same wall-clock time within one day always produces the same tag.
func TestCacheTag_TimeOfDayIrrelevant(t *testing.T) {
	params := map[string]string{"location": "cairo,-egypt"}
	morning := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, CacheTag(params, morning), CacheTag(params, evening))
}

func TestUntilLocalMidnight(t *testing.T) {
	now := time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, UntilLocalMidnight(now))
}

func TestCacheControlValue_Clamps(t *testing.T) {
	// Far from midnight: capped at six hours.
	noon := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "public, s-maxage=21600, stale-while-revalidate=3600", CacheControlValue(noon))

	// Just before midnight: floored at one minute.
	late := time.Date(2026, 9, 1, 23, 59, 30, 0, time.UTC)
	assert.Equal(t, "public, s-maxage=60, stale-while-revalidate=3600", CacheControlValue(late))

	// In between: the actual remaining seconds.
	evening := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "public, s-maxage=7200, stale-while-revalidate=3600", CacheControlValue(evening))
}
