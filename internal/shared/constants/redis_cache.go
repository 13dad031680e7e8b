package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTL values.
// Pattern: pt:{location}:{method}:{school}:{year-month} for month data,
// pt:resp:{tag} for rendered documents, pt:stats:* for counters.

// ================== CACHE TTL DURATIONS ==================

const (
	// TTL_MONTH_DATA bounds staleness of raw month timings without explicit
	// invalidation. Day-boundary precision is handled by the response cache
	// expiring at local midnight, not by invalidating month data.
	TTL_MONTH_DATA = 7 * 24 * time.Hour

	// TTL_STATS keeps request counters around long enough for dashboards.
	TTL_STATS = 30 * 24 * time.Hour
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "pt"

	// Rendered calendar documents (L2), keyed by the request cache tag.
	CACHE_KEY_RESPONSE = CACHE_PREFIX + ":resp:" // + tag

	// Request counters, incremented atomically per served calendar.
	CACHE_KEY_STATS_TOTAL    = CACHE_PREFIX + ":stats:req:total"
	CACHE_KEY_STATS_LOCATION = CACHE_PREFIX + ":stats:req:" // + location:yyyy-mm-dd
)

// ================== INVALIDATION / SCAN PATTERNS ==================

// Patterns for admin tooling (KEYS scan is never used on the hot path).
const (
	PATTERN_ALL_KEYS   = CACHE_PREFIX + ":*"
	PATTERN_RESPONSES  = CACHE_PREFIX + ":resp:*"
	PATTERN_STATS_KEYS = CACHE_PREFIX + ":stats:*"
)

// ================== KEY BUILDERS ==================

// BuildMonthKey constructs the L1 key for one month of prayer timings.
// All four dimensions are encoded so that a different method or school can
// never collide with another's cached days.
// Example: BuildMonthKey("cairo,-egypt", 5, 0, "2024-03") -> "pt:cairo,-egypt:5:0:2024-03"
func BuildMonthKey(location string, method, school int, yearMonth string) string {
	return fmt.Sprintf("%s:%s:%d:%d:%s", CACHE_PREFIX, location, method, school, yearMonth)
}

// BuildMonthPattern matches every cached month for one (location, method, school).
func BuildMonthPattern(location string, method, school int) string {
	return fmt.Sprintf("%s:%s:%d:%d:*", CACHE_PREFIX, location, method, school)
}

// BuildResponseKey constructs the L2 key for a rendered calendar document.
func BuildResponseKey(tag string) string {
	return CACHE_KEY_RESPONSE + tag
}

// BuildStatsLocationKey constructs the per-location daily counter key.
func BuildStatsLocationKey(location, day string) string {
	return CACHE_KEY_STATS_LOCATION + location + ":" + day
}
