package service

import (
	"testing"
	"time"

	"scentstore/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBucketsDay(t *testing.T) {
	ref := time.Date(2025, 12, 10, 15, 30, 0, 0, time.UTC)

	windows, err := ComputeBuckets(PeriodDay, ref)
	require.NoError(t, err)
	require.Len(t, windows, 7)

	assert.Equal(t, "04-12-2025", windows[0].Label)
	assert.Equal(t, "10-12-2025", windows[6].Label)
	assert.Equal(t, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), windows[6].From)
	assert.Equal(t, time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC), windows[6].To)
}

func TestComputeBucketsWeekStartsMonday(t *testing.T) {
	// 2025-12-10 is a Wednesday; its week starts Monday 2025-12-08
	ref := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	windows, err := ComputeBuckets(PeriodWeek, ref)
	require.NoError(t, err)
	require.Len(t, windows, 4)

	assert.Equal(t, "Week of 08-12-2025", windows[3].Label)
	assert.Equal(t, "Week of 17-11-2025", windows[0].Label)
	assert.Equal(t, windows[3].From.AddDate(0, 0, 7), windows[3].To)
}

func TestComputeBucketsMonthCoversWholeYear(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	windows, err := ComputeBuckets(PeriodMonth, ref)
	require.NoError(t, err)
	require.Len(t, windows, 12)

	assert.Equal(t, "January 2025", windows[0].Label)
	assert.Equal(t, "December 2025", windows[11].Label)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), windows[11].To)
}

func TestComputeBucketsYear(t *testing.T) {
	ref := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	windows, err := ComputeBuckets(PeriodYear, ref)
	require.NoError(t, err)
	require.Len(t, windows, 5)
	assert.Equal(t, "2021", windows[0].Label)
	assert.Equal(t, "2025", windows[4].Label)
}

func TestComputeBucketsRejectsUnknownPeriod(t *testing.T) {
	_, err := ComputeBuckets("fortnight", time.Now())
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBucketRows(t *testing.T) {
	ref := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	windows, err := ComputeBuckets(PeriodDay, ref)
	require.NoError(t, err)

	rows := []store.RevenueRow{
		{CreatedAt: time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC), Total: 884000},
		{CreatedAt: time.Date(2025, 12, 10, 18, 0, 0, 0, time.UTC), Total: 116000},
		{CreatedAt: time.Date(2025, 12, 8, 12, 0, 0, 0, time.UTC), Total: 250000},
	}

	report := BucketRows(windows, rows)
	require.Len(t, report, 8)

	last := report[6]
	assert.Equal(t, "10-12-2025", last.Bucket)
	assert.Equal(t, 2, last.OrderCount)
	assert.Equal(t, int64(1000000), last.Revenue)
	assert.Equal(t, int64(500000), last.AvgRevenue)

	total := report[7]
	assert.Equal(t, "TOTAL", total.Bucket)
	assert.Equal(t, 3, total.OrderCount)
	assert.Equal(t, int64(1250000), total.Revenue)
	assert.Equal(t, int64(416667), total.AvgRevenue)
}

func TestBucketRowsEmptyBucketsHaveZeroAverage(t *testing.T) {
	ref := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	windows, err := ComputeBuckets(PeriodDay, ref)
	require.NoError(t, err)

	report := BucketRows(windows, nil)
	for _, row := range report {
		assert.Zero(t, row.OrderCount)
		assert.Zero(t, row.Revenue)
		assert.Zero(t, row.AvgRevenue)
	}
}
