package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal, schedulerJobs) }

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Daily reports attempted, labeled by result.",
		},
		[]string{"result"}, // 'ok', 'error'
	)

	schedulerJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_jobs",
			Help: "Daily notification jobs currently scheduled.",
		},
	)
)

func IncNotification(err error) {
	notificationsTotal.WithLabelValues(resultLabel(err)).Inc()
}

func SetSchedulerJobs(n int) {
	schedulerJobs.Set(float64(n))
}
