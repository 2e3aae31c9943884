// Package observability defines the Prometheus instruments shared by the bot
// loops, the scheduler, and the admin HTTP server. Everything registers on
// the default registry; the admin server exposes it at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesHandled counts inbound Telegram updates by kind
	// (message, callback, ignored).
	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_handled_total",
		Help: "Inbound Telegram updates processed, by kind.",
	}, []string{"kind"})

	// HandlerErrors counts handler invocations that returned an error.
	HandlerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_handler_errors_total",
		Help: "Handler invocations that ended in an error.",
	})

	// NotificationsSent counts outbound notifications by outcome (ok, failed).
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_notifications_total",
		Help: "Outbound notification attempts, by outcome.",
	}, []string{"outcome"})

	// RemindersFired counts scheduler reminder sends by job name.
	RemindersFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_reminders_fired_total",
		Help: "Reminder messages sent, by job.",
	}, []string{"job"})

	// HolidayRequests counts workflow outcomes (submitted, approved, rejected).
	HolidayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "holiday_requests_total",
		Help: "Holiday workflow transitions, by outcome.",
	}, []string{"outcome"})

	// OrdersPlaced counts accepted customer orders.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_placed_total",
		Help: "Customer orders accepted by the shop bot.",
	})
)
