package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/sanchawla17/Invosight/models"
)

// Bucketing intervals for the revenue series.
const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
)

const defaultRangeDays = 30

var allowedRanges = map[int]struct{}{7: {}, 30: {}, 90: {}}

// NormalizeRangeDays coerces a raw range parameter to one of {7, 30, 90}.
// Anything else (missing, non-numeric, out of set) falls back to 30; the
// closed set bounds query cost and the chart vocabulary callers can request.
func NormalizeRangeDays(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultRangeDays
	}
	if _, ok := allowedRanges[n]; !ok {
		return defaultRangeDays
	}
	return n
}

// NormalizeInterval coerces a raw interval parameter to day, week or month
// (case-insensitive), falling back to day.
func NormalizeInterval(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case IntervalWeek:
		return IntervalWeek
	case IntervalMonth:
		return IntervalMonth
	default:
		return IntervalDay
	}
}

// DateRange returns the inclusive [start, end] lookback window of rangeDays
// calendar days ending at now. Start is clamped to 00:00:00 UTC of its day,
// so the window covers rangeDays whole days at day granularity.
func DateRange(now time.Time, rangeDays int) (time.Time, time.Time) {
	end := now.UTC()
	s := end.AddDate(0, 0, -(rangeDays - 1))
	start := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	return start, end
}

// Truncate buckets t to the UTC start of its containing day, week or month.
// Weeks start on Sunday.
func Truncate(t time.Time, interval string) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch interval {
	case IntervalWeek:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case IntervalMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// endOfDay returns the last instant of t's UTC calendar day.
func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// IsOverdue reports whether an unpaid invoice's due day has fully elapsed.
// An invoice is overdue only when it is not Paid, has a due date, and the
// end of that calendar day (UTC) lies strictly before now. A missing due
// date means "never due".
func IsOverdue(status string, dueDate *time.Time, now time.Time) bool {
	if status == models.StatusPaid || dueDate == nil {
		return false
	}
	return endOfDay(*dueDate).Before(now)
}
