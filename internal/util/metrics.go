package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	}, []string{"channel"})

	OrdersCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	}, []string{"reason"})

	OrdersDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_delivered_total",
		Help: "Total number of delivered orders",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	QRISChargesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qris_charges_total",
		Help: "Total number of QRIS charge attempts",
	})

	QRISChargeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qris_charge_latency_seconds",
		Help:    "Latency of gateway charge calls",
		Buckets: prometheus.DefBuckets,
	})

	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_received_total",
		Help: "Total number of gateway webhooks received",
	}, []string{"status"})

	WebhooksRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_rejected_total",
		Help: "Total number of gateway webhooks dropped before processing",
	}, []string{"reason"})

	PaymentsSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_settled_total",
		Help: "Total number of settled payments",
	})

	PaymentsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Total number of failed payments",
	})

	TransactionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_transactions_expired_total",
		Help: "Total number of transactions expired by the sweep",
	})

	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expiry_sweep_runs_total",
		Help: "Total number of expiry sweep runs",
	}, []string{"result"})

	NotificationsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_emitted_total",
		Help: "Total number of notifications created",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
