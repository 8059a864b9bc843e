// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CompilationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "override_compilations_total",
			Help: "Total number of override compilations by task and output mode",
		},
		[]string{"task", "mode"},
	)

	FragmentsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "override_fragments_emitted_total",
			Help: "Total number of override fragments emitted per task",
		},
		[]string{"task"},
	)

	FragmentsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "override_fragments_dropped_total",
			Help: "Total number of fragments dropped during substitution",
		},
		[]string{"task", "reason"},
	)

	MissingOptionRefs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "override_missing_option_refs_total",
			Help: "Total number of option references skipped because the registry has no entry",
		},
		[]string{"option"},
	)

	CompileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "override_compile_duration_seconds",
			Help: "Duration of override compilation in seconds",
		},
		[]string{"task"},
	)
)
