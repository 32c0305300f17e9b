package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_reservations_total",
			Help: "Total reservations by outcome",
		},
		[]string{"outcome"},
	)

	NearestLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_nearest_lookups_total",
			Help: "Nearest-campus lookups by coordinate source",
		},
		[]string{"source"},
	)

	MongoOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_events_mongo_op_seconds",
			Help:    "Duration of MongoDB operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "op"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campus_events_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
