package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the onboarding counters.
//
//   - onboarding_profile_updates_total{result}      "success" or "failure"
//   - onboarding_insights_provisioned_total{source} "existing", "generated" or "fallback"
//   - onboarding_status_checks_total{result}        "onboarded", "not_onboarded" or "error"
type Metrics struct {
	ProfileUpdatesTotal      *prometheus.CounterVec
	InsightsProvisionedTotal *prometheus.CounterVec
	StatusChecksTotal        *prometheus.CounterVec
}

// New registers the counters on first use and returns the shared set, so
// repeated calls never trigger a duplicate registration panic.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ProfileUpdatesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "onboarding_profile_updates_total",
					Help: "Total number of profile update attempts",
				},
				[]string{"result"},
			),
			InsightsProvisionedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "onboarding_insights_provisioned_total",
					Help: "Total number of industry insights resolved during onboarding",
				},
				[]string{"source"},
			),
			StatusChecksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "onboarding_status_checks_total",
					Help: "Total number of onboarding status checks",
				},
				[]string{"result"},
			),
		}
	})
	return globalMetrics
}
