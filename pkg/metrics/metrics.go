// Package metrics holds the Prometheus collectors shared by the RPC client
// and the mint registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "amm"

type Metrics struct {
	rpcRequests    *prometheus.CounterVec
	rpcErrors      *prometheus.CounterVec
	rpcLatency     *prometheus.HistogramVec
	registryHits   prometheus.Counter
	registryMisses prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to
// expose them through promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls issued, by method",
		}, []string{"op"}),
		rpcErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_errors_total",
			Help:      "RPC calls that failed after retries, by method",
		}, []string{"op"}),
		rpcLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_latency_seconds",
			Help:      "RPC call latency including retries",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"op"}),
		registryHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mint_registry_hits_total",
			Help:      "Mint lookups served from cache",
		}),
		registryMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mint_registry_misses_total",
			Help:      "Mint lookups that required a fetch",
		}),
	}
}

// ObserveRPC records one logical RPC call.
func (m *Metrics) ObserveRPC(op string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(op).Inc()
	m.rpcLatency.WithLabelValues(op).Observe(took.Seconds())
	if err != nil {
		m.rpcErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) RegistryHit() {
	if m == nil {
		return
	}
	m.registryHits.Inc()
}

func (m *Metrics) RegistryMiss(n int) {
	if m == nil {
		return
	}
	m.registryMisses.Add(float64(n))
}
