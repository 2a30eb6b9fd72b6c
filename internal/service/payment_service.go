package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scentstore/internal/broker"
	"scentstore/internal/gateway"
	"scentstore/internal/models"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrGateway marks upstream gateway failures so the API layer can map
// them to a 502 with the gateway's error body.
var ErrGateway = errors.New("payment gateway error")

// PaymentService bridges orders to the QRIS gateway
type PaymentService struct {
	store          *store.Store
	gateway        gateway.Gateway
	eventPublisher *broker.EventPublisher
	serverKey      string
	expiryMinutes  int
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(st *store.Store, gw gateway.Gateway, eventPublisher *broker.EventPublisher, serverKey string, expiryMinutes int) *PaymentService {
	return &PaymentService{
		store:          st,
		gateway:        gw,
		eventPublisher: eventPublisher,
		serverKey:      serverKey,
		expiryMinutes:  expiryMinutes,
		logger:         util.GetLogger(),
	}
}

// ChargeQRIS creates the gateway transaction for a freshly inserted
// order. Called from inside the checkout transaction; an error here
// rolls the whole checkout back.
func (ps *PaymentService) ChargeQRIS(order *models.Order, items []models.OrderItem, user *models.User) (*models.PaymentTransaction, error) {
	util.QRISChargesTotal.Inc()
	start := time.Now()
	defer func() {
		util.QRISChargeLatency.Observe(time.Since(start).Seconds())
	}()

	gatewayOrderID := fmt.Sprintf("ORD-%d-%s", order.ID, uuid.New().String()[:8])

	resp, err := ps.gateway.ChargeQRIS(&gateway.ChargeRequest{
		GatewayOrderID: gatewayOrderID,
		GrossAmount:    order.Total,
		ExpiryMinutes:  ps.expiryMinutes,
		CustomerName:   user.Name,
		CustomerEmail:  user.Email,
		CustomerPhone:  user.Phone,
		Items:          items,
	})
	if err != nil {
		ps.logger.Error("Gateway charge failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return &models.PaymentTransaction{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrderID,
		GatewayTxID:    resp.TransactionID,
		GrossAmount:    order.Total,
		QRURL:          resp.QRURL,
		Status:         models.TxStatusPending,
		ExpiresAt:      resp.ExpiresAt,
		RawPayload:     resp.RawPayload,
	}, nil
}

// HandleWebhook applies a gateway notification. Invalid or
// unrecognized payloads are logged and dropped; the HTTP layer always
// answers 200 to keep the gateway from retry-storming.
func (ps *PaymentService) HandleWebhook(ctx context.Context, n *gateway.Notification) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandleWebhook")
	defer span.End()

	util.WebhooksReceivedTotal.WithLabelValues(n.TransactionStatus).Inc()

	if !n.VerifySignature(ps.serverKey) {
		util.WebhooksRejectedTotal.WithLabelValues("bad_signature").Inc()
		ps.logger.Warn("Webhook signature mismatch", zap.String("gateway_order_id", n.OrderID))
		return nil
	}

	ptx, err := ps.store.GetTransactionByGatewayOrderID(ctx, n.OrderID)
	if err != nil {
		util.WebhooksRejectedTotal.WithLabelValues("unknown_order").Inc()
		ps.logger.Warn("Webhook for unknown transaction", zap.String("gateway_order_id", n.OrderID))
		return nil
	}

	amount, err := n.GrossAmountValue()
	if err != nil || amount != ptx.GrossAmount {
		util.WebhooksRejectedTotal.WithLabelValues("amount_mismatch").Inc()
		ps.logger.Warn("Webhook gross amount mismatch",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("reported", n.GrossAmount),
			zap.Int64("expected", ptx.GrossAmount))
		return nil
	}

	txStatus := gateway.MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	switch txStatus {
	case models.TxStatusSettled:
		return ps.applySettlement(ctx, n)
	case models.TxStatusExpire, models.TxStatusFailed:
		return ps.applyFailure(ctx, n, txStatus)
	default:
		ps.logger.Info("Webhook status not actionable",
			zap.String("gateway_order_id", n.OrderID),
			zap.String("transaction_status", n.TransactionStatus))
		return nil
	}
}

func (ps *PaymentService) applySettlement(ctx context.Context, n *gateway.Notification) error {
	txTime := time.Now()
	if parsed, err := gateway.ParseGatewayTime(n.TransactionTime); err == nil {
		txTime = parsed
	}

	result, err := ps.store.ApplySettlementTx(ctx, n.OrderID, n.TransactionID, txTime)
	if err != nil {
		ps.logger.Error("Failed to apply settlement",
			zap.String("gateway_order_id", n.OrderID), zap.Error(err))
		return err
	}
	if !result.Applied {
		ps.logger.Info("Duplicate settlement webhook ignored",
			zap.String("gateway_order_id", n.OrderID))
		return nil
	}

	util.PaymentsSettledTotal.Inc()
	ps.logger.Info("Payment settled",
		zap.Int64("order_id", result.OrderID),
		zap.Int64("amount", result.Amount))

	event := &models.PaymentSucceededEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentSucceeded,
			Timestamp: time.Now(),
		},
		OrderID:     result.OrderID,
		UserID:      result.UserID,
		Amount:      result.Amount,
		GatewayTxID: n.TransactionID,
	}
	if err := ps.eventPublisher.PublishPaymentSucceeded(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentSucceeded event", zap.Error(err))
	}
	return nil
}

func (ps *PaymentService) applyFailure(ctx context.Context, n *gateway.Notification, txStatus string) error {
	result, err := ps.store.ApplyFailureTx(ctx, n.OrderID, txStatus)
	if err != nil {
		ps.logger.Error("Failed to apply payment failure",
			zap.String("gateway_order_id", n.OrderID), zap.Error(err))
		return err
	}
	if !result.Applied {
		ps.logger.Info("Duplicate failure webhook ignored",
			zap.String("gateway_order_id", n.OrderID))
		return nil
	}

	util.PaymentsFailedTotal.Inc()
	util.OrdersCancelledTotal.WithLabelValues("payment_" + txStatus).Inc()
	ps.logger.Info("Payment failed",
		zap.Int64("order_id", result.OrderID),
		zap.String("tx_status", txStatus))

	event := &models.PaymentFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentFailed,
			Timestamp: time.Now(),
		},
		OrderID: result.OrderID,
		UserID:  result.UserID,
		Reason:  n.TransactionStatus,
	}
	if err := ps.eventPublisher.PublishPaymentFailed(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
	}
	return nil
}

// ExpireStale closes every pending transaction whose expiry has
// passed, in one batch transaction, and reports how many it closed.
// Already-expired rows are filtered out by status, so re-runs are
// no-ops.
func (ps *PaymentService) ExpireStale(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ExpireStale")
	defer span.End()

	expired, err := ps.store.ExpireStaleTransactionsTx(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("expiry sweep failed: %w", err)
	}

	for _, e := range expired {
		util.TransactionsExpiredTotal.Inc()
		util.OrdersCancelledTotal.WithLabelValues("payment_expired").Inc()
		ps.logger.Info("Transaction expired",
			zap.Int64("transaction_id", e.TransactionID),
			zap.Int64("order_id", e.OrderID))

		event := &models.PaymentExpiredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePaymentExpired,
				Timestamp: time.Now(),
			},
			OrderID: e.OrderID,
			UserID:  e.UserID,
			Amount:  e.Amount,
		}
		if err := ps.eventPublisher.PublishPaymentExpired(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentExpired event", zap.Error(err))
		}
	}

	return len(expired), nil
}

// GetTransaction retrieves the gateway transaction of an order for
// client-side status polling.
func (ps *PaymentService) GetTransaction(ctx context.Context, orderID, userID int64) (*models.PaymentTransaction, error) {
	order, err := ps.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, store.ErrNotOwned)
	}
	return ps.store.GetTransactionByOrderID(ctx, orderID)
}
