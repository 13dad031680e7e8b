package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Key collisions between calculation dimensions would serve one school's
// timings for another, so the builders must encode every dimension.
func TestBuildMonthKey_Disjoint(t *testing.T) {
	shafi := BuildMonthKey("cairo,-egypt", 5, 0, "2026-09")
	hanafi := BuildMonthKey("cairo,-egypt", 5, 1, "2026-09")
	otherMethod := BuildMonthKey("cairo,-egypt", 4, 0, "2026-09")

	assert.Equal(t, "pt:cairo,-egypt:5:0:2026-09", shafi)
	assert.NotEqual(t, shafi, hanafi)
	assert.NotEqual(t, shafi, otherMethod)
}

func TestBuildMonthPattern_CoversOnlyOwnMonths(t *testing.T) {
	pattern := BuildMonthPattern("cairo,-egypt", 5, 0)
	assert.Equal(t, "pt:cairo,-egypt:5:0:*", pattern)
}

func TestBuildKeys_StayInNamespace(t *testing.T) {
	for _, key := range []string{
		BuildMonthKey("mecca", 4, 1, "2026-09"),
		BuildResponseKey("abcdef0123456789"),
		BuildStatsLocationKey("mecca", "2026-09-01"),
	} {
		assert.Regexp(t, "^pt:", key)
	}
}
