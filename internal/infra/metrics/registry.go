package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		registryMutationsTotal,
		registrySubscribers,
		registryStoreRetriesTotal,
	)
}

var (
	registryMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_mutations_total",
			Help: "Subscribe/unsubscribe requests by outcome.",
		},
		[]string{"outcome"}, // 'subscribed', 'already_subscribed', 'unsubscribed', 'not_subscribed', 'error'
	)

	registrySubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_subscribers",
			Help: "Current number of subscribed recipients.",
		},
	)

	registryStoreRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_store_retries_total",
			Help: "Registry writes retried after a store failure.",
		},
	)
)

func IncRegistryMutation(outcome string) {
	registryMutationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func SetRegistrySubscribers(n int) {
	registrySubscribers.Set(float64(n))
}

func IncRegistryStoreRetry() {
	registryStoreRetriesTotal.Inc()
}
