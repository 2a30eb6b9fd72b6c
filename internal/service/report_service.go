package service

import (
	"context"
	"errors"
	"math"
	"time"

	"scentstore/internal/store"
	"scentstore/internal/util"

	"go.uber.org/zap"
)

// ErrInvalidPeriod rejects unknown aggregation periods
var ErrInvalidPeriod = errors.New("period must be one of day, week, month, year")

// Aggregation periods
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// ReportRow is one bucket of the sales report. The last row is the
// grand total, labelled "TOTAL".
type ReportRow struct {
	Bucket     string `json:"bucket"`
	OrderCount int    `json:"order_count"`
	Revenue    int64  `json:"revenue"`
	AvgRevenue int64  `json:"avg_revenue"`
}

// BucketWindow is a half-open aggregation window [From, To)
type BucketWindow struct {
	Label string
	From  time.Time
	To    time.Time
}

// ReportService aggregates completed orders into sales reports
type ReportService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(st *store.Store) *ReportService {
	return &ReportService{store: st, logger: util.GetLogger()}
}

// ComputeBuckets lays out the aggregation windows for a period
// relative to a reference date: the 7 days ending at the reference,
// the 4 weeks ending at its week, the 12 months of its year, or the
// 5 years ending at its year.
func ComputeBuckets(period string, ref time.Time) ([]BucketWindow, error) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	switch period {
	case PeriodDay:
		windows := make([]BucketWindow, 0, 7)
		for i := 6; i >= 0; i-- {
			from := day.AddDate(0, 0, -i)
			windows = append(windows, BucketWindow{
				Label: from.Format("02-01-2006"),
				From:  from,
				To:    from.AddDate(0, 0, 1),
			})
		}
		return windows, nil

	case PeriodWeek:
		weekStart := day
		for weekStart.Weekday() != time.Monday {
			weekStart = weekStart.AddDate(0, 0, -1)
		}
		windows := make([]BucketWindow, 0, 4)
		for i := 3; i >= 0; i-- {
			from := weekStart.AddDate(0, 0, -7*i)
			windows = append(windows, BucketWindow{
				Label: "Week of " + from.Format("02-01-2006"),
				From:  from,
				To:    from.AddDate(0, 0, 7),
			})
		}
		return windows, nil

	case PeriodMonth:
		windows := make([]BucketWindow, 0, 12)
		for m := time.January; m <= time.December; m++ {
			from := time.Date(ref.Year(), m, 1, 0, 0, 0, 0, ref.Location())
			windows = append(windows, BucketWindow{
				Label: from.Format("January 2006"),
				From:  from,
				To:    from.AddDate(0, 1, 0),
			})
		}
		return windows, nil

	case PeriodYear:
		windows := make([]BucketWindow, 0, 5)
		for i := 4; i >= 0; i-- {
			from := time.Date(ref.Year()-i, time.January, 1, 0, 0, 0, 0, ref.Location())
			windows = append(windows, BucketWindow{
				Label: from.Format("2006"),
				From:  from,
				To:    from.AddDate(1, 0, 0),
			})
		}
		return windows, nil

	default:
		return nil, ErrInvalidPeriod
	}
}

// BucketRows assigns revenue rows to their windows and appends the
// grand total. Per-bucket average is revenue/orderCount (0 when the
// bucket is empty); the grand total average is rounded.
func BucketRows(windows []BucketWindow, rows []store.RevenueRow) []ReportRow {
	report := make([]ReportRow, 0, len(windows)+1)
	var totalCount int
	var totalRevenue int64

	for _, w := range windows {
		var count int
		var revenue int64
		for _, row := range rows {
			if !row.CreatedAt.Before(w.From) && row.CreatedAt.Before(w.To) {
				count++
				revenue += row.Total
			}
		}

		var avg int64
		if count > 0 {
			avg = revenue / int64(count)
		}
		report = append(report, ReportRow{
			Bucket:     w.Label,
			OrderCount: count,
			Revenue:    revenue,
			AvgRevenue: avg,
		})

		totalCount += count
		totalRevenue += revenue
	}

	var totalAvg int64
	if totalCount > 0 {
		totalAvg = int64(math.Round(float64(totalRevenue) / float64(totalCount)))
	}
	report = append(report, ReportRow{
		Bucket:     "TOTAL",
		OrderCount: totalCount,
		Revenue:    totalRevenue,
		AvgRevenue: totalAvg,
	})
	return report
}

// Aggregate groups completed orders (PACKAGING, SHIPPING, DELIVERED)
// into the period's buckets relative to referenceDate.
func (rs *ReportService) Aggregate(ctx context.Context, period string, referenceDate time.Time) ([]ReportRow, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Aggregate")
	defer span.End()

	windows, err := ComputeBuckets(period, referenceDate)
	if err != nil {
		return nil, err
	}

	rows, err := rs.store.GetCompletedOrdersBetween(ctx, windows[0].From, windows[len(windows)-1].To)
	if err != nil {
		return nil, err
	}

	rs.logger.Debug("Sales aggregation",
		zap.String("period", period),
		zap.Int("orders", len(rows)))
	return BucketRows(windows, rows), nil
}

// DashboardStats returns the admin dashboard counters
func (rs *ReportService) DashboardStats(ctx context.Context) (*store.DashboardStats, error) {
	return rs.store.GetDashboardStats(ctx, time.Now())
}
