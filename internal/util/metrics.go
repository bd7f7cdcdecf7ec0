package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected or failed order creations",
	}, []string{"reason"})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of order status transitions by target status",
	}, []string{"status"})

	ProfitCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profit_credited_dinar_total",
		Help: "Total profit moved from pending to withdrawable balance",
	})

	PendingProfitTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profit_pending_dinar_total",
		Help: "Total profit added to pending balances at order creation",
	})

	WithdrawalsRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "withdrawals_requested_total",
		Help: "Total number of accepted withdrawal requests",
	})

	WithdrawalsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "withdrawals_rejected_total",
		Help: "Total number of rejected withdrawal requests",
	}, []string{"reason"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_published_total",
		Help: "Total number of ledger events published",
	}, []string{"type", "result"})

	JournalEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_journal_entries_total",
		Help: "Total number of ledger events consumed by the journal worker",
	}, []string{"result"})

	ImageUploadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "image_upload_latency_seconds",
		Help:    "Latency of image uploads to the image host",
		Buckets: prometheus.DefBuckets,
	})

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
