package xtream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vodboard",
		Subsystem: "xtream",
		Name:      "requests_total",
		Help:      "player_api requests by action and outcome.",
	}, []string{"action", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vodboard",
		Subsystem: "xtream",
		Name:      "request_duration_seconds",
		Help:      "player_api request latency by action.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"action"})
)

const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeMalformed   = "malformed"
)
