package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters for the email ingestion flow. Registered once at process
// start via promauto; services increment them directly.
var (
	EmailsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "ingest",
		Name:      "emails_scanned_total",
		Help:      "Candidate emails fetched from the mail provider.",
	})

	EmailsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "ingest",
		Name:      "emails_rejected_total",
		Help:      "Candidate emails rejected by the acceptance policy, by reason.",
	}, []string{"reason"})

	BillsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "ingest",
		Name:      "bills_created_total",
		Help:      "Bills created, by source (manual or gmail).",
	}, []string{"source"})

	BillsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "ingest",
		Name:      "bills_deduplicated_total",
		Help:      "Extracted candidates matched to an existing bill instead of creating one.",
	})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Stripe webhook events received, by type and outcome.",
	}, []string{"type", "outcome"})
)
