package complete

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded on QueriesTotal.
const (
	outcomeOK        = "ok"
	outcomeEmpty     = "empty"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "javacomplete_queries_total",
		Help: "Total number of completion queries, by node kind and outcome.",
	}, []string{"mode", "outcome"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "javacomplete_query_seconds",
		Help:    "Time spent computing a completion result.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	ItemsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "javacomplete_items_returned",
		Help:    "Number of items in each completion result.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
