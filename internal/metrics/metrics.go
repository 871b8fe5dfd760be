package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheelsmith_conversions_total",
			Help: "Total gauge reading conversions by outcome",
		},
		[]string{"status"},
	)

	ReadingsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheelsmith_readings_recorded_total",
			Help: "Total tension readings written, by side and range status",
		},
		[]string{"side", "range_status"},
	)

	SessionsAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wheelsmith_sessions_analyzed_total",
			Help: "Total measurement session analyses computed",
		},
	)

	ReadingTension = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wheelsmith_reading_tension_kgf",
			Help:    "Distribution of converted spoke tensions in kgf",
			Buckets: prometheus.LinearBuckets(40, 10, 14),
		},
	)
)
