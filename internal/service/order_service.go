package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scentstore/internal/broker"
	"scentstore/internal/models"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles the order lifecycle
type OrderService struct {
	store          *store.Store
	payments       *PaymentService
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(st *store.Store, payments *PaymentService, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          st,
		payments:       payments,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ShippingAddress is the checkout delivery target
type ShippingAddress struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	AddressLine   string `json:"address_line" binding:"required"`
	City          string `json:"city" binding:"required"`
	Province      string `json:"province" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
}

// CreateOrderRequest selects cart rows for checkout
type CreateOrderRequest struct {
	CartItemIDs     []int64         `json:"cart_item_ids" binding:"required,min=1"`
	ShippingAddress ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   string          `json:"payment_method" binding:"required,oneof=QRIS"`
}

// CreateOrderResponse is returned after a successful checkout
type CreateOrderResponse struct {
	OrderID   int64              `json:"order_id"`
	OrderCode string             `json:"order_code"`
	Status    string             `json:"status"`
	Total     int64              `json:"total"`
	Items     []models.OrderItem `json:"items"`
	QRURL     string             `json:"qr_url,omitempty"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}

// CreateFromCart converts the selected cart rows into a pending order.
// Catalog prices are read at creation time, per-size stock is
// decremented under row locks, consumed cart rows are deleted and the
// gateway transaction is charged, all inside one transaction, so a
// gateway failure leaves no order behind.
func (s *OrderService) CreateFromCart(ctx context.Context, userID int64, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateFromCart")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		Channel:       models.ChannelOnline,
		Status:        models.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		RecipientName: req.ShippingAddress.RecipientName,
		Phone:         req.ShippingAddress.Phone,
		AddressLine:   req.ShippingAddress.AddressLine,
		City:          req.ShippingAddress.City,
		Province:      req.ShippingAddress.Province,
		PostalCode:    req.ShippingAddress.PostalCode,
	}
	payment := &models.Payment{
		Method: req.PaymentMethod,
		Status: models.PaymentStatusPending,
	}

	var qrURL string
	var expiresAt time.Time
	charge := func(o *models.Order, items []models.OrderItem) (*models.PaymentTransaction, error) {
		ptx, err := s.payments.ChargeQRIS(o, items, user)
		if err != nil {
			return nil, err
		}
		qrURL = ptx.QRURL
		expiresAt = ptx.ExpiresAt
		return ptx, nil
	}

	items, err := s.store.CreateOrderFromCartTx(ctx, order, payment, req.CartItemIDs, charge)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues(checkoutFailReason(err)).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.WithLabelValues(models.ChannelOnline).Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Int64("total", order.Total))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		UserID:        order.UserID,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CreateOrderResponse{
		OrderID:   order.ID,
		OrderCode: util.OrderCode(order.ID, order.CreatedAt),
		Status:    order.Status,
		Total:     order.Total,
		Items:     items,
		QRURL:     qrURL,
		ExpiresAt: &expiresAt,
	}, nil
}

func checkoutFailReason(err error) string {
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, store.ErrEmptyCart), errors.Is(err, store.ErrNotOwned):
		return "invalid_cart"
	case errors.Is(err, ErrGateway):
		return "gateway"
	default:
		return "db_error"
	}
}

// Cancel cancels a customer's own order. Permitted only while the
// order is PACKAGING; stock for every line is restored.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Cancel")
	defer span.End()

	order, err := s.store.CancelOrderTx(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	util.OrdersCancelledTotal.WithLabelValues("customer").Inc()
	s.logger.Info("Order cancelled", zap.Int64("order_id", orderID))

	s.publishStatusChanged(ctx, order, models.OrderStatusPackaging)
	return order, nil
}

// Finish marks a shipping order as delivered by its owner and prompts
// for a review via the notification worker.
func (s *OrderService) Finish(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Finish")
	defer span.End()

	order, err := s.store.FinishOrderTx(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	util.OrdersDeliveredTotal.Inc()
	s.logger.Info("Order delivered", zap.Int64("order_id", orderID))

	s.publishStatusChanged(ctx, order, models.OrderStatusShipping)
	return order, nil
}

// AdvanceStatus moves an order forward along
// PENDING -> PACKAGING -> SHIPPING -> DELIVERED (admin path).
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID int64, newStatus, trackingNumber string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AdvanceStatus")
	defer span.End()

	order, fromStatus, err := s.store.AdvanceOrderStatusTx(ctx, orderID, newStatus, trackingNumber)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status advanced",
		zap.Int64("order_id", orderID),
		zap.String("from", fromStatus),
		zap.String("to", newStatus))

	s.publishStatusChanged(ctx, order, fromStatus)
	return order, nil
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, fromStatus string) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		UserID:     order.UserID,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

// OrderDetail bundles an order with its lines and display code
type OrderDetail struct {
	Order     *models.Order      `json:"order"`
	OrderCode string             `json:"order_code"`
	Items     []models.OrderItem `json:"items"`
	Payment   *models.Payment    `json:"payment,omitempty"`
}

// Get retrieves an order with its items; a non-zero userID enforces ownership
func (s *OrderService) Get(ctx context.Context, orderID, userID int64) (*OrderDetail, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, store.ErrNotOwned)
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return &OrderDetail{
		Order:     order,
		OrderCode: util.OrderCode(order.ID, order.CreatedAt),
		Items:     items,
		Payment:   payment,
	}, nil
}

// ListByUser retrieves a user's orders, newest first
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// List retrieves orders across users with optional filters (admin path)
func (s *OrderService) List(ctx context.Context, status, channel string) ([]models.Order, error) {
	return s.store.GetOrders(ctx, status, channel)
}
