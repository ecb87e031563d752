package stats

import (
	"testing"
	"time"

	"github.com/sanchawla17/Invosight/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRangeDays(t *testing.T) {
	assert.Equal(t, 7, NormalizeRangeDays("7"))
	assert.Equal(t, 30, NormalizeRangeDays("30"))
	assert.Equal(t, 90, NormalizeRangeDays(" 90 "))

	// Everything else silently coerces to 30.
	assert.Equal(t, 30, NormalizeRangeDays("45"))
	assert.Equal(t, 30, NormalizeRangeDays(""))
	assert.Equal(t, 30, NormalizeRangeDays("abc"))
	assert.Equal(t, 30, NormalizeRangeDays("-7"))
}

func TestNormalizeInterval(t *testing.T) {
	assert.Equal(t, IntervalDay, NormalizeInterval("day"))
	assert.Equal(t, IntervalWeek, NormalizeInterval("WEEK"))
	assert.Equal(t, IntervalMonth, NormalizeInterval("Month"))

	assert.Equal(t, IntervalDay, NormalizeInterval("fortnight"))
	assert.Equal(t, IntervalDay, NormalizeInterval(""))
}

func TestDateRange(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC)

	start, end := DateRange(now, 7)
	assert.Equal(t, now, end)
	// 7 whole calendar days inclusive: 9th..15th.
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
}

func TestTruncate(t *testing.T) {
	ts := time.Date(2025, 3, 15, 17, 45, 12, 0, time.UTC) // a Saturday

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), Truncate(ts, IntervalDay))
	// Weeks start on Sunday.
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), Truncate(ts, IntervalWeek))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Truncate(ts, IntervalMonth))

	sunday := time.Date(2025, 3, 9, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), Truncate(sunday, IntervalWeek))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	assert.True(t, IsOverdue(models.StatusUnpaid, &yesterday, now))
	assert.False(t, IsOverdue(models.StatusUnpaid, &tomorrow, now))

	// Due today: the day has not fully elapsed yet.
	today := now.Add(-2 * time.Hour)
	assert.False(t, IsOverdue(models.StatusUnpaid, &today, now))

	// Paid invoices are never overdue, nor are ones with no due date.
	assert.False(t, IsOverdue(models.StatusPaid, &yesterday, now))
	assert.False(t, IsOverdue(models.StatusUnpaid, nil, now))
}
