package prayer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeLocation canonicalizes a request's place into a stable cache-key
// fragment. An address is slugified (lowercased, trimmed, whitespace runs
// collapsed to single hyphens); coordinates are rounded to two decimal
// places, trading exactness for cache hit-rate. Pure and total: malformed
// numeric input yields "NaN,NaN" rather than a panic.
func NormalizeLocation(p Params) string {
	if addr := strings.TrimSpace(p.Address); addr != "" {
		return whitespaceRun.ReplaceAllString(strings.ToLower(addr), "-")
	}

	lat, lng := "NaN", "NaN"
	if p.Latitude != nil {
		lat = fmt.Sprintf("%.2f", *p.Latitude)
	}
	if p.Longitude != nil {
		lng = fmt.Sprintf("%.2f", *p.Longitude)
	}
	return lat + "," + lng
}

// CacheTag derives an opaque identity token from the full parameter set plus
// the local date, so the tag rolls over at midnight even with no parameter
// change. Params are serialized as a sorted association list before hashing;
// the contract is that every parameter affects the tag, in canonical order.
func CacheTag(params map[string]string, now time.Time) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}
	b.WriteString("date=")
	b.WriteString(now.Format("2006-01-02"))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// UntilLocalMidnight returns the duration until the next local midnight.
// Response-cache entries expire then, so a rendered document can never
// outlive "today".
func UntilLocalMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

// CacheControlValue computes the Cache-Control header for a response served
// at the given instant. The shared max-age shrinks as local midnight
// approaches so edge caches never serve yesterday's calendar.
func CacheControlValue(now time.Time) string {
	secs := int(UntilLocalMidnight(now) / time.Second)
	if secs > 21600 {
		secs = 21600
	}
	if secs < 60 {
		secs = 60
	}
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=3600", secs)
}
