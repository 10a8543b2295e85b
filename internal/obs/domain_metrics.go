package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentInitiationTotal counts Bridge invocations by outcome.
	PaymentInitiationTotal *prometheus.CounterVec
	// PaymentInitiationDuration records Bridge latency in milliseconds by outcome.
	PaymentInitiationDuration *prometheus.HistogramVec
	// RecipientCacheTotal counts recipient cache lookups (hit, miss, error).
	RecipientCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
// Only the first call has any effect.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentInitiationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_initiation_total",
			Help:      "Count of payment initiation outcomes.",
		}, []string{"result"})
		PaymentInitiationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_initiation_duration_ms",
			Help:      "Latency of payment initiation including recipient lookup and provider call.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
		}, []string{"result"})
		RecipientCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipient_cache_total",
			Help:      "Recipient cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, PaymentInitiationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentInitiationTotal = v
			}
		})
		mustRegisterCollector(reg, PaymentInitiationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				PaymentInitiationDuration = v
			}
		})
		mustRegisterCollector(reg, RecipientCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RecipientCacheTotal = v
			}
		})
	})
}
