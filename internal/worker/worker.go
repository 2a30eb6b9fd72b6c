package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"scentstore/internal/broker"
	"scentstore/internal/models"
	"scentstore/internal/redisclient"
	"scentstore/internal/service"
	"scentstore/internal/store"
	"scentstore/internal/util"
)

// NotificationWorker turns domain events into user notifications
type NotificationWorker struct {
	consumer      *broker.Consumer
	eventHandler  *broker.EventHandler
	notifications *service.NotificationService
	store         *store.Store
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(
	consumer *broker.Consumer,
	notifications *service.NotificationService,
	st *store.Store,
) *NotificationWorker {
	w := &NotificationWorker{
		consumer:      consumer,
		notifications: notifications,
		store:         st,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	eventHandler.OnPaymentSucceeded(w.handlePaymentSucceeded)
	eventHandler.OnPaymentFailed(w.handlePaymentFailed)
	eventHandler.OnPaymentExpired(w.handlePaymentExpired)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

// alreadyProcessed consults the processed_events table so redelivered
// messages do not duplicate notifications
func (w *NotificationWorker) alreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	processed, err := w.store.IsEventProcessed(ctx, eventID)
	if err != nil {
		return false, err
	}
	if processed {
		log.Printf("Skipping already processed event: %s", eventID)
	}
	return processed, nil
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	var message string
	switch event.ToStatus {
	case models.OrderStatusPackaging:
		message = fmt.Sprintf("Your order #%d is being packed.", event.OrderID)
	case models.OrderStatusShipping:
		message = fmt.Sprintf("Your order #%d is on the way.", event.OrderID)
	case models.OrderStatusDelivered:
		message = fmt.Sprintf("Your order #%d has been delivered.", event.OrderID)
	case models.OrderStatusCancelled:
		message = fmt.Sprintf("Your order #%d was cancelled.", event.OrderID)
	default:
		return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
	}

	orderID := event.OrderID
	if _, _, err := w.notifications.Emit(ctx, event.UserID, &orderID, models.NotificationOrderUpdate, message); err != nil {
		return err
	}

	if event.ToStatus == models.OrderStatusDelivered {
		review := fmt.Sprintf("How was order #%d? Leave a review for the perfumes you received.", event.OrderID)
		if _, _, err := w.notifications.Emit(ctx, event.UserID, &orderID, models.NotificationDelivery, review); err != nil {
			return err
		}
	}

	// a cancel out of PACKAGING means the payment had settled
	if event.ToStatus == models.OrderStatusCancelled && event.FromStatus == models.OrderStatusPackaging {
		refund := fmt.Sprintf("Your payment for order #%d will be refunded.", event.OrderID)
		if _, _, err := w.notifications.Emit(ctx, event.UserID, &orderID, models.NotificationRefund, refund); err != nil {
			return err
		}
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handlePaymentSucceeded(ctx context.Context, event *models.PaymentSucceededEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	orderID := event.OrderID
	message := fmt.Sprintf("Payment of %s for order #%d received. We are preparing your perfumes.",
		util.FormatRupiah(event.Amount), event.OrderID)
	if _, _, err := w.notifications.Emit(ctx, event.UserID, &orderID, models.NotificationPayment, message); err != nil {
		return err
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handlePaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	orderID := event.OrderID
	message := fmt.Sprintf("Payment for order #%d failed and the order was cancelled.", event.OrderID)
	if _, _, err := w.notifications.Emit(ctx, event.UserID, &orderID, models.NotificationPayment, message); err != nil {
		return err
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handlePaymentExpired(ctx context.Context, event *models.PaymentExpiredEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	orderID := event.OrderID
	message := fmt.Sprintf("The QRIS code for order #%d expired and the order was cancelled.", event.OrderID)
	if _, _, err := w.notifications.Emit(ctx, event.UserID, &orderID, models.NotificationPayment, message); err != nil {
		return err
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// ExpirySweeper periodically cancels QRIS transactions whose codes
// have expired without a settlement webhook
type ExpirySweeper struct {
	payments *service.PaymentService
	redis    *redisclient.Client
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(payments *service.PaymentService, redis *redisclient.Client, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		payments: payments,
		redis:    redis,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start starts the sweep loop
func (s *ExpirySweeper) Start(ctx context.Context) error {
	log.Printf("Starting expiry sweeper (interval: %s)...", s.interval)
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop stops the sweep loop
func (s *ExpirySweeper) Stop() error {
	log.Println("Stopping expiry sweeper...")
	close(s.stop)
	<-s.done
	return nil
}

// sweep runs one pass under a redis lock so only one instance sweeps
// at a time
func (s *ExpirySweeper) sweep(ctx context.Context) {
	acquired, err := s.redis.AcquireLock(ctx, "expiry-sweep", s.interval)
	if err != nil {
		log.Printf("Sweep lock error: %v", err)
		util.SweepRunsTotal.WithLabelValues("lock_error").Inc()
		return
	}
	if !acquired {
		util.SweepRunsTotal.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		if err := s.redis.ReleaseLock(ctx, "expiry-sweep"); err != nil {
			log.Printf("Sweep lock release error: %v", err)
		}
	}()

	count, err := s.payments.ExpireStale(ctx)
	if err != nil {
		log.Printf("Expiry sweep failed: %v", err)
		util.SweepRunsTotal.WithLabelValues("error").Inc()
		return
	}

	if count > 0 {
		log.Printf("Expiry sweep cancelled %d transaction(s)", count)
	}
	util.SweepRunsTotal.WithLabelValues("ok").Inc()
}
