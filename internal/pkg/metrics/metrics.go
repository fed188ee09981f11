// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MutationsTotal counts mutation runs by kind and outcome
	// (completed, rejected, failed, invalid).
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senja_mutations_total",
			Help: "Number of protocol mutations run, by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// StepFailuresTotal counts transaction steps that ended in the error
	// state (user cancels are not failures and are not counted here).
	StepFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senja_step_failures_total",
			Help: "Number of transaction steps that failed, by mutation kind and step index.",
		},
		[]string{"kind", "step"},
	)

	// FeeQuoteLookups counts fee quote resolutions by source
	// (local, cache, chain, unavailable).
	FeeQuoteLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senja_fee_quote_lookups_total",
			Help: "Number of crosschain fee quote resolutions, by source.",
		},
		[]string{"source"},
	)

	// CacheInvalidations counts read-cache tag invalidations.
	CacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "senja_cache_invalidations_total",
			Help: "Number of read-cache invalidations, by tag.",
		},
		[]string{"tag"},
	)
)

// MustRegisterMetrics registers all gateway collectors with the default
// registry. It panics on duplicate registration, which indicates a wiring
// bug.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		MutationsTotal,
		StepFailuresTotal,
		FeeQuoteLookups,
		CacheInvalidations,
	)
}
