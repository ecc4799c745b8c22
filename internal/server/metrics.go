package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "threatstage",
		Name:      "runs_started_total",
		Help:      "Scenario pipeline runs started.",
	})
	runsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "threatstage",
		Name:      "runs_completed_total",
		Help:      "Scenario pipeline runs that reached the complete state.",
	})
	runsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "threatstage",
		Name:      "runs_failed_total",
		Help:      "Scenario pipeline runs that errored during modeling.",
	})
	runsSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "threatstage",
		Name:      "runs_superseded_total",
		Help:      "Scenario pipeline runs discarded because a newer run started.",
	})
	countermeasureTests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "threatstage",
		Name:      "countermeasure_tests_total",
		Help:      "Countermeasure effectiveness tests requested.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "threatstage",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of completed pipeline runs.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
