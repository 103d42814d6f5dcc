package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebid", Name: "rides_created_total", Help: "Total rides created"})
	BidsSubmitted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebid", Name: "bids_submitted_total", Help: "Total bids appended to ride ledgers"})
	BidsAccepted  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebid", Name: "bids_accepted_total", Help: "Total winning bid acceptances"})
	OTPFailures   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebid", Name: "otp_failures_total", Help: "Failed pickup code verifications"})
	ChatMessages  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridebid", Name: "chat_messages_total", Help: "Chat messages posted"})

	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridebid", Name: "ride_transitions_total", Help: "Ride status transitions applied"},
		[]string{"to"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridebid", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridebid",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
