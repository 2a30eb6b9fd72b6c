package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scentstore/internal/models"

	"github.com/jmoiron/sqlx"
)

// ChargeFunc creates the gateway transaction for a freshly inserted
// order. It runs inside the order-creation transaction so a gateway
// failure rolls the whole checkout back.
type ChargeFunc func(order *models.Order, items []models.OrderItem) (*models.PaymentTransaction, error)

// BuildOrderItems snapshots cart lines into priced order items.
// Returns the items and the order subtotal (sum of line subtotals).
func BuildOrderItems(lines []CartLine) ([]models.OrderItem, int64) {
	items := make([]models.OrderItem, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		lineSubtotal := line.UnitPrice * int64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			SizeID:      line.SizeID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    lineSubtotal,
		})
		subtotal += lineSubtotal
	}
	return items, subtotal
}

// CreateOrderFromCartTx converts selected cart rows into an order in a
// single transaction: lines are priced from the catalog now, per-size
// stock is decremented under row locks, consumed cart rows are deleted,
// and the payment (plus gateway transaction, when charge is non-nil)
// is persisted. Any failure, including the gateway call, rolls back
// everything.
func (s *Store) CreateOrderFromCartTx(ctx context.Context, order *models.Order, payment *models.Payment, cartItemIDs []int64, charge ChargeFunc) ([]models.OrderItem, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lines, err := getCartLinesForUpdateTx(ctx, tx, order.UserID, cartItemIDs)
	if err != nil {
		return nil, err
	}

	items, subtotal := BuildOrderItems(lines)
	order.Subtotal = subtotal
	order.Total = subtotal

	for _, item := range items {
		if err := decrementStockTx(ctx, tx, item.SizeID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := insertOrderTx(ctx, tx, order, items); err != nil {
		return nil, err
	}

	payment.OrderID = order.ID
	payment.Amount = order.Total
	if err := insertPaymentTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	query, args, err := sqlx.In("DELETE FROM cart_items WHERE id IN (?)", cartItemIDs)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to consume cart rows: %w", err)
	}

	if charge != nil {
		ptx, err := charge(order, items)
		if err != nil {
			return nil, err
		}
		if err := insertTransactionTx(ctx, tx, ptx); err != nil {
			return nil, err
		}
	}

	return items, tx.Commit()
}

// POSItem is a point-of-sale line request
type POSItem struct {
	SizeID   int64
	Quantity int
}

/// CreatePOSOrderTx records an in-store cash sale: lines are priced from
// the catalog, stock is decremented under row locks, and the order is
// created directly in PACKAGING with a successful cash payment.
func (s *Store) CreatePOSOrderTx(ctx context.Context, order *models.Order, posItems []POSItem) ([]models.OrderItem, error) {
	if len(posItems) == 0 {
		return nil, ErrEmptyCart
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	items := make([]models.OrderItem, 0, len(posItems))
	var subtotal int64
	for _, pi := range posItems {
		var line struct {
			ProductID   int64  `db:"product_id"`
			ProductName string `db:"product_name"`
			Size        string `db:"size"`
			UnitPrice   int64  `db:"unit_price"`
		}
		err := tx.GetContext(ctx, &line, `
			SELECT ps.product_id, p.name AS product_name, ps.size, p.price AS unit_price
			FROM product_sizes ps
			JOIN products p ON p.id = ps.product_id
			WHERE ps.id = $1`, pi.SizeID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product size %d: %w", pi.SizeID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}

		if err := decrementStockTx(ctx, tx, pi.SizeID, pi.Quantity); err != nil {
			return nil, err
		}

		lineSubtotal := line.UnitPrice * int64(pi.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			SizeID:      pi.SizeID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    pi.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    lineSubtotal,
		})
		subtotal += lineSubtotal
	}

	order.Subtotal = subtotal
	order.Total = subtotal
	if err := insertOrderTx(ctx, tx, order, items); err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &models.Payment{
		OrderID:         order.ID,
		Method:          models.PaymentMethodCash,
		Amount:          order.Total,
		Status:          models.PaymentStatusSuccess,
		TransactionTime: &now,
	}
	if err := insertPaymentTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	return items, tx.Commit()
}

func insertOrderTx(ctx context.Context, tx *sqlx.Tx, order *models.Order, items []models.OrderItem) error {
	err := tx.GetContext(ctx, order, `
		INSERT INTO orders (user_id, channel, subtotal, total, status, payment_method,
		                    recipient_name, phone, address_line, city, province, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		order.UserID, order.Channel, order.Subtotal, order.Total, order.Status, order.PaymentMethod,
		order.RecipientName, order.Phone, order.AddressLine, order.City, order.Province, order.PostalCode)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err := tx.GetContext(ctx, &items[i].ID, `
			INSERT INTO order_items (order_id, product_id, size_id, product_name, size, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			order.ID, items[i].ProductID, items[i].SizeID, items[i].ProductName,
			items[i].Size, items[i].Quantity, items[i].UnitPrice, items[i].Subtotal)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func insertPaymentTx(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	err := tx.GetContext(ctx, payment, `
		INSERT INTO payments (order_id, method, amount, status, transaction_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		payment.OrderID, payment.Method, payment.Amount, payment.Status, payment.TransactionTime)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func insertTransactionTx(ctx context.Context, tx *sqlx.Tx, ptx *models.PaymentTransaction) error {
	err := tx.GetContext(ctx, ptx, `
		INSERT INTO payment_transactions (order_id, gateway_order_id, gateway_tx_id, gross_amount, qr_url, status, expires_at, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		ptx.OrderID, ptx.GatewayOrderID, ptx.GatewayTxID, ptx.GrossAmount, ptx.QRURL, ptx.Status, ptx.ExpiresAt, ptx.RawPayload)
	if err != nil {
		return fmt.Errorf("failed to insert payment transaction: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrders retrieves orders across users, optionally filtered by
// status and channel, newest first.
func (s *Store) GetOrders(ctx context.Context, status, channel string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR channel = $2)
		ORDER BY created_at DESC`, status, channel)
	return orders, err
}

// GetOrdersOnDay retrieves one calendar day of orders for a channel,
// newest first
func (s *Store) GetOrdersOnDay(ctx context.Context, channel string, day time.Time) ([]models.Order, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE channel = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC`, channel, dayStart, dayStart.AddDate(0, 0, 1))
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// CancelOrderTx cancels a customer order. Permitted only while the
// order is PACKAGING; every line's per-size stock is restored in the
// same transaction as the status flip. A zero userID skips the
// ownership check (system/admin path).
func (s *Store) CancelOrderTx(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := getOrderForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotOwned)
	}
	if order.Status != models.OrderStatusPackaging {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, ErrNotCancellable)
	}

	if err := restoreOrderStockTx(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := setOrderStatusTx(ctx, tx, orderID, models.OrderStatusCancelled); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	return order, tx.Commit()
}

// FinishOrderTx marks a shipping order as delivered by its owner
func (s *Store) FinishOrderTx(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := getOrderForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotOwned)
	}
	if order.Status != models.OrderStatusShipping {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, ErrNotFinishable)
	}

	if err := setOrderStatusTx(ctx, tx, orderID, models.OrderStatusDelivered); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusDelivered
	return order, tx.Commit()
}

// AdvanceOrderStatusTx moves an order forward along the
// PENDING -> PACKAGING -> SHIPPING -> DELIVERED chain (admin path).
// trackingNumber is recorded when moving into SHIPPING. The returned
// string is the pre-transition status read under the row lock, so the
// published event reports the transition that actually happened.
func (s *Store) AdvanceOrderStatusTx(ctx context.Context, orderID int64, newStatus, trackingNumber string) (*models.Order, string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	order, err := getOrderForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, "", err
	}
	fromStatus := order.Status
	if !models.CanAdvanceOrder(fromStatus, newStatus) {
		return nil, "", fmt.Errorf("order %d: %s -> %s: %w", orderID, fromStatus, newStatus, ErrInvalidTransition)
	}

	if newStatus == models.OrderStatusShipping && trackingNumber != "" {
		if _, err := tx.ExecContext(ctx,
			"UPDATE orders SET tracking_number = $1 WHERE id = $2", trackingNumber, orderID); err != nil {
			return nil, "", err
		}
		order.TrackingNumber = trackingNumber
	}
	if err := setOrderStatusTx(ctx, tx, orderID, newStatus); err != nil {
		return nil, "", err
	}

	order.Status = newStatus
	return order, fromStatus, tx.Commit()
}

func getOrderForUpdateTx(ctx context.Context, tx *sqlx.Tx, orderID int64) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func setOrderStatusTx(ctx context.Context, tx *sqlx.Tx, orderID int64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", status, orderID)
	return err
}

func restoreOrderStockTx(ctx context.Context, tx *sqlx.Tx, orderID int64) error {
	var items []models.OrderItem
	if err := tx.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID); err != nil {
		return err
	}
	for _, item := range items {
		if err := restoreStockTx(ctx, tx, item.SizeID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// GetPaymentByOrderID retrieves the payment for an order
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment for order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetTransactionByGatewayOrderID looks up a gateway transaction
func (s *Store) GetTransactionByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentTransaction, error) {
	var ptx models.PaymentTransaction
	err := s.db.GetContext(ctx, &ptx,
		"SELECT * FROM payment_transactions WHERE gateway_order_id = $1", gatewayOrderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", gatewayOrderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ptx, nil
}

// GetTransactionByOrderID retrieves the gateway transaction of an order
func (s *Store) GetTransactionByOrderID(ctx context.Context, orderID int64) (*models.PaymentTransaction, error) {
	var ptx models.PaymentTransaction
	err := s.db.GetContext(ctx, &ptx,
		"SELECT * FROM payment_transactions WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction for order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ptx, nil
}

// WebhookResult reports what a webhook application actually changed.
// Applied is false when the transaction was already in a terminal
// status (duplicate or out-of-order delivery).
type WebhookResult struct {
	Applied bool
	OrderID int64
	UserID  int64
	Amount  int64
}

// ApplySettlementTx settles a gateway transaction and cascades:
// payment -> SUCCESS, order PENDING -> PACKAGING. Re-applying a
// terminal transaction is a no-op. The status is re-checked under a
// row lock so a concurrent expiry sweep cannot interleave.
func (s *Store) ApplySettlementTx(ctx context.Context, gatewayOrderID, gatewayTxID string, txTime time.Time) (*WebhookResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ptx, err := getTransactionForUpdateTx(ctx, tx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if models.TxStatusTerminal(ptx.Status) {
		return &WebhookResult{Applied: false, OrderID: ptx.OrderID}, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE payment_transactions SET status = $1, gateway_tx_id = $2, updated_at = NOW()
		WHERE id = $3`, models.TxStatusSettled, gatewayTxID, ptx.ID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, transaction_time = $2, updated_at = NOW()
		WHERE order_id = $3 AND status = $4`,
		models.PaymentStatusSuccess, txTime, ptx.OrderID, models.PaymentStatusPending); err != nil {
		return nil, err
	}

	order, err := getOrderForUpdateTx(ctx, tx, ptx.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusPending {
		if err := setOrderStatusTx(ctx, tx, order.ID, models.OrderStatusPackaging); err != nil {
			return nil, err
		}
	}

	result := &WebhookResult{Applied: true, OrderID: order.ID, UserID: order.UserID, Amount: ptx.GrossAmount}
	return result, tx.Commit()
}

// ApplyFailureTx marks a gateway transaction failed/expired and
// cascades: payment -> FAILED if still pending, order -> CANCELLED
// with stock restore if still PENDING. Idempotent for terminal rows.
func (s *Store) ApplyFailureTx(ctx context.Context, gatewayOrderID, txStatus string) (*WebhookResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ptx, err := getTransactionForUpdateTx(ctx, tx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if models.TxStatusTerminal(ptx.Status) {
		return &WebhookResult{Applied: false, OrderID: ptx.OrderID}, tx.Commit()
	}

	result, err := failTransactionTx(ctx, tx, ptx, txStatus)
	if err != nil {
		return nil, err
	}
	return result, tx.Commit()
}

func getTransactionForUpdateTx(ctx context.Context, tx *sqlx.Tx, gatewayOrderID string) (*models.PaymentTransaction, error) {
	var ptx models.PaymentTransaction
	err := tx.GetContext(ctx, &ptx,
		"SELECT * FROM payment_transactions WHERE gateway_order_id = $1 FOR UPDATE", gatewayOrderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", gatewayOrderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ptx, nil
}

// failTransactionTx performs the shared failure cascade for webhooks
// and the expiry sweep. Caller holds the row lock on ptx.
func failTransactionTx(ctx context.Context, tx *sqlx.Tx, ptx *models.PaymentTransaction, txStatus string) (*WebhookResult, error) {
	if _, err := tx.ExecContext(ctx,
		"UPDATE payment_transactions SET status = $1, updated_at = NOW() WHERE id = $2",
		txStatus, ptx.ID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = NOW()
		WHERE order_id = $2 AND status = $3`,
		models.PaymentStatusFailed, ptx.OrderID, models.PaymentStatusPending); err != nil {
		return nil, err
	}

	order, err := getOrderForUpdateTx(ctx, tx, ptx.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusPending {
		if err := restoreOrderStockTx(ctx, tx, order.ID); err != nil {
			return nil, err
		}
		if err := setOrderStatusTx(ctx, tx, order.ID, models.OrderStatusCancelled); err != nil {
			return nil, err
		}
	}

	return &WebhookResult{Applied: true, OrderID: order.ID, UserID: order.UserID, Amount: ptx.GrossAmount}, nil
}

// ExpiredTransaction identifies a transaction closed by the sweep
type ExpiredTransaction struct {
	TransactionID int64
	OrderID       int64
	UserID        int64
	Amount        int64
}

// ExpireStaleTransactionsTx closes every pending gateway transaction
// whose expiry has passed. One transaction per batch; rows are locked
// so a concurrently arriving webhook waits and then no-ops on the
// status re-check. Already-terminal rows are excluded by the status
// filter, making re-runs no-ops.
func (s *Store) ExpireStaleTransactionsTx(ctx context.Context, now time.Time) ([]ExpiredTransaction, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var stale []models.PaymentTransaction
	err = tx.SelectContext(ctx, &stale, `
		SELECT * FROM payment_transactions
		WHERE status = $1 AND expires_at < $2
		ORDER BY id
		FOR UPDATE`, models.TxStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stale transactions: %w", err)
	}

	expired := make([]ExpiredTransaction, 0, len(stale))
	for i := range stale {
		result, err := failTransactionTx(ctx, tx, &stale[i], models.TxStatusExpire)
		if err != nil {
			return nil, err
		}
		expired = append(expired, ExpiredTransaction{
			TransactionID: stale[i].ID,
			OrderID:       result.OrderID,
			UserID:        result.UserID,
			Amount:        result.Amount,
		})
	}

	return expired, tx.Commit()
}

// IsEventProcessed checks if a broker event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a broker event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
