package service

import (
	"context"
	"time"

	"scentstore/internal/broker"
	"scentstore/internal/models"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// POSService records walk-in cash sales at the counter
type POSService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewPOSService creates a new POS service
func NewPOSService(st *store.Store, publisher *broker.EventPublisher) *POSService {
	return &POSService{store: st, eventPublisher: publisher, logger: util.GetLogger()}
}

// POSLineRequest is one line of a counter sale
type POSLineRequest struct {
	SizeID   int64 `json:"size_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// CreatePOSRequest is a counter sale submitted by a cashier
type CreatePOSRequest struct {
	CustomerName string           `json:"customer_name"`
	Items        []POSLineRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateTransaction records a cash sale: lines are priced from the
// current catalog, stock is decremented, and the order starts at
// PACKAGING with a settled cash payment.
func (ps *POSService) CreateTransaction(ctx context.Context, cashierID int64, req *CreatePOSRequest) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "POSService.CreateTransaction")
	defer span.End()

	order := &models.Order{
		UserID:        cashierID,
		RecipientName: req.CustomerName,
		Channel:       models.ChannelPOS,
		PaymentMethod: models.PaymentMethodCash,
	}

	posItems := make([]store.POSItem, 0, len(req.Items))
	for _, line := range req.Items {
		posItems = append(posItems, store.POSItem{SizeID: line.SizeID, Quantity: line.Quantity})
	}

	items, err := ps.store.CreatePOSOrderTx(ctx, order, posItems)
	if err != nil {
		ps.logger.Error("POS sale failed",
			zap.Int64("cashier_id", cashierID),
			zap.Error(err))
		return nil, err
	}

	util.OrdersCreatedTotal.WithLabelValues(models.ChannelPOS).Inc()
	ps.logger.Info("POS sale recorded",
		zap.Int64("order_id", order.ID),
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
	if err := ps.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		ps.logger.Error("Failed to publish order created event", zap.Error(err))
	}

	return &OrderDetail{
		Order:     order,
		OrderCode: util.OrderCode(order.ID, order.CreatedAt),
		Items:     items,
	}, nil
}

// List returns POS orders for the cashier dashboard
func (ps *POSService) List(ctx context.Context, status string) ([]models.Order, error) {
	return ps.store.GetOrders(ctx, status, models.ChannelPOS)
}

// ListForDay returns the counter sales of one calendar day
func (ps *POSService) ListForDay(ctx context.Context, day time.Time) ([]models.Order, error) {
	return ps.store.GetOrdersOnDay(ctx, models.ChannelPOS, day)
}
