package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminRequestsTotal) }

var adminRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_http_requests_total",
		Help: "Requests served by the admin HTTP server.",
	},
	[]string{"route", "status"},
)

func IncAdminRequest(route, status string) {
	adminRequestsTotal.WithLabelValues(route, status).Inc()
}
