package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts inbound bank notifications by reconciliation outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keyvend_webhook_events_total",
		Help: "Inbound bank webhook notifications, labeled by reconciliation outcome",
	}, []string{"outcome"})

	// Purchases counts purchase attempts by result.
	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keyvend_purchases_total",
		Help: "Key purchase attempts, labeled by result",
	}, []string{"result"})

	// CreditedAmount accumulates the amounts credited from matched deposits.
	CreditedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keyvend_credited_amount_total",
		Help: "Total amount credited to balances from matched deposits, in the smallest currency unit",
	})
)
