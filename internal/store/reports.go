package store

import (
	"context"
	"time"

	"scentstore/internal/models"

	"github.com/lib/pq"
)

// RevenueRow is the minimal order projection used by sales aggregation
type RevenueRow struct {
	CreatedAt time.Time `db:"created_at"`
	Total     int64     `db:"total"`
}

// completedStatuses are the order states that count as revenue
var completedStatuses = []string{
	models.OrderStatusPackaging,
	models.OrderStatusShipping,
	models.OrderStatusDelivered,
}

// GetCompletedOrdersBetween retrieves revenue rows for paid orders
// created in [from, to).
func (s *Store) GetCompletedOrdersBetween(ctx context.Context, from, to time.Time) ([]RevenueRow, error) {
	var rows []RevenueRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT created_at, total FROM orders
		WHERE status = ANY($1) AND created_at >= $2 AND created_at < $3
		ORDER BY created_at`,
		pq.Array(completedStatuses), from, to)
	return rows, err
}

// DashboardStats summarizes storefront activity for the admin panel
type DashboardStats struct {
	TodayRevenue    int64 `db:"today_revenue" json:"today_revenue"`
	TodayOrders     int   `db:"today_orders" json:"today_orders"`
	PendingOrders   int   `db:"pending_orders" json:"pending_orders"`
	PackagingOrders int   `db:"packaging_orders" json:"packaging_orders"`
	ShippingOrders  int   `db:"shipping_orders" json:"shipping_orders"`
	TotalOrders     int   `db:"total_orders" json:"total_orders"`
	TotalRevenue    int64 `db:"total_revenue" json:"total_revenue"`
	TotalProducts   int   `db:"total_products" json:"total_products"`
	TotalCustomers  int   `db:"total_customers" json:"total_customers"`
}

// GetDashboardStats aggregates the admin dashboard counters
func (s *Store) GetDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats DashboardStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE status = ANY($1) AND created_at >= $2), 0) AS today_revenue,
			COUNT(*) FILTER (WHERE created_at >= $2) AS today_orders,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_orders,
			COUNT(*) FILTER (WHERE status = 'PACKAGING') AS packaging_orders,
			COUNT(*) FILTER (WHERE status = 'SHIPPING') AS shipping_orders,
			COUNT(*) AS total_orders,
			COALESCE(SUM(total) FILTER (WHERE status = ANY($1)), 0) AS total_revenue,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM users WHERE role = 'CUSTOMER') AS total_customers
		FROM orders`,
		pq.Array(completedStatuses), dayStart)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
