package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)

	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "reservations_created_total",
			Help:      "The total number of reservations placed on inventory",
		},
	)

	ReservationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "reservations_expired_total",
			Help:      "The total number of reservations reclaimed by the sweeper",
		},
	)

	CheckInsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkin",
			Name:      "accepted_total",
			Help:      "The total number of accepted check-ins",
		},
		[]string{"source"},
	)

	CheckInsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkin",
			Name:      "rejected_total",
			Help:      "The total number of rejected check-in attempts",
		},
		[]string{"reason"},
	)
)
