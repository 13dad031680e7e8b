package prayer

import (
	"context"
	"sort"
	"time"

	"praycalendar/pkg/logger"
)

// Service resolves a span of months into a complete, sorted day list,
// reading through the month cache and fetching only the gaps.
type Service interface {
	// GetPrayerTimes returns every day from yesterday's month through
	// months ahead. It fails closed: any upstream failure aborts the whole
	// call rather than returning a partial list.
	GetPrayerTimes(ctx context.Context, params Params, months int) ([]Day, error)
}

type service struct {
	months  *MonthCache
	fetcher RangeFetcher
	logger  *logger.Logger
	now     func() time.Time
}

// NewService wires the gap resolver. The clock is injectable for tests.
func NewService(months *MonthCache, fetcher RangeFetcher, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		months:  months,
		fetcher: fetcher,
		logger:  log,
		now:     time.Now,
	}
}

// monthRun is a maximal contiguous run of missing months.
type monthRun struct {
	first, last string // "YYYY-MM", inclusive
}

func (s *service) GetPrayerTimes(ctx context.Context, params Params, months int) ([]Day, error) {
	now := s.now()
	// Start at yesterday to absorb timezone rounding at the day boundary.
	yesterday := now.AddDate(0, 0, -1)

	needed := neededMonths(yesterday, months)
	location := NormalizeLocation(params)

	byMonth, missing := s.months.GetCachedMonths(ctx, location, params.Method, params.School, needed)

	// One upstream call per contiguous run of missing months, not one per
	// month. Concurrent identical misses may fetch the same run twice;
	// writes are idempotent under the same TTL, so no coalescing is done.
	for _, run := range groupContiguous(missing) {
		start := firstOfMonth(run.first)
		if run.first == yesterday.Format("2006-01") {
			start = dateOnly(yesterday)
		}
		end := firstOfMonth(run.last).AddDate(0, 1, -1)

		days, err := s.fetcher.FetchRange(ctx, params, start, end)
		if err != nil {
			// Fail closed: no partial month list, no partial cache writes
			// for this range.
			return nil, err
		}

		// The upstream day-to-month mapping is authoritative: a fetch that
		// spans a boundary must populate each month's slot independently.
		for ym, group := range groupByMonth(days) {
			byMonth[ym] = group
			s.months.SetCachedMonth(location, params.Method, params.School, ym, group)
		}
	}

	var result []Day
	for _, ym := range needed {
		result = append(result, byMonth[ym]...)
	}
	return sortDays(result), nil
}

// neededMonths lists "YYYY-MM" from anchor's month through months ahead,
// inclusive.
func neededMonths(anchor time.Time, months int) []string {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, months, 0)

	var out []string
	for cur := first; !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		out = append(out, cur.Format("2006-01"))
	}
	return out
}

// groupContiguous merges an ascending month list into maximal runs:
// [2024-01 2024-02 2024-04] -> [(2024-01,2024-02), (2024-04,2024-04)].
func groupContiguous(months []string) []monthRun {
	var runs []monthRun
	for _, ym := range months {
		if n := len(runs); n > 0 && nextMonth(runs[n-1].last) == ym {
			runs[n-1].last = ym
			continue
		}
		runs = append(runs, monthRun{first: ym, last: ym})
	}
	return runs
}

func nextMonth(ym string) string {
	return firstOfMonth(ym).AddDate(0, 1, 0).Format("2006-01")
}

func firstOfMonth(ym string) time.Time {
	t, err := time.Parse("2006-01", ym)
	if err != nil {
		return time.Time{}
	}
	return t
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// groupByMonth regroups fetched days by their actual Gregorian year-month.
func groupByMonth(days []Day) map[string][]Day {
	groups := make(map[string][]Day)
	for _, day := range days {
		ym := day.YearMonth()
		if ym == "" {
			continue
		}
		groups[ym] = append(groups[ym], day)
	}
	return groups
}

// sortDays orders days ascending by Gregorian date and drops duplicates,
// which can appear when a yesterday-anchored fetch overlaps a cached month.
func sortDays(days []Day) []Day {
	sort.SliceStable(days, func(i, j int) bool {
		ti, _ := days[i].GregorianTime()
		tj, _ := days[j].GregorianTime()
		return ti.Before(tj)
	})

	out := days[:0]
	var prev string
	for _, day := range days {
		if day.Date.Gregorian.Date == prev {
			continue
		}
		prev = day.Date.Gregorian.Date
		out = append(out, day)
	}
	return out
}
