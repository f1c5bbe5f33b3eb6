package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		feedFetchTotal,
		feedFetchSeconds,
		feedRejectedRowsTotal,
		snapshotBuildsTotal,
	)
}

var (
	feedFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Source feed fetches by source and result.",
		},
		[]string{"source", "result"}, // source: 'doses', 'population'
	)

	feedFetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_seconds",
			Help:    "Source feed fetch latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	feedRejectedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_rejected_rows_total",
			Help: "Feed rows dropped as data quality errors.",
		},
	)

	snapshotBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_builds_total",
			Help: "Snapshots computed, labeled by scope.",
		},
		[]string{"scope"}, // 'national', 'regional'
	)
)

func ObserveFeedFetch(source string, took time.Duration, err error) {
	feedFetchTotal.WithLabelValues(norm(source), resultLabel(err)).Inc()
	feedFetchSeconds.WithLabelValues(norm(source)).Observe(took.Seconds())
}

func AddRejectedRows(n int) {
	if n > 0 {
		feedRejectedRowsTotal.Add(float64(n))
	}
}

func IncSnapshotBuild(scope string) {
	snapshotBuildsTotal.WithLabelValues(norm(scope)).Inc()
}
