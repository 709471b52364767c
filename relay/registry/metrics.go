package registry

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metric names broken out for reuse.
const (
	DescriptorsRegisteredName = "descriptors_registered"
	LoadFailuresName          = "descriptor_load_failures"
)

var (
	// DescriptorsRegistered counts descriptor revisions accepted into the
	// catalog.
	DescriptorsRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "relay",
			Name:      DescriptorsRegisteredName,
			Help:      "Cumulative descriptor revisions registered in the catalog.",
		})

	// LoadFailures counts descriptors rejected at load time.
	LoadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "relay",
			Name:      LoadFailuresName,
			Help:      "Cumulative descriptors rejected by schema validation or duplicate registration.",
		})
)

// RegisterPrometheusMetrics register all prometheus metrics with the global
// metrics handler.
func RegisterPrometheusMetrics() {
	prometheus.Register(DescriptorsRegistered)
	prometheus.Register(LoadFailures)
}
