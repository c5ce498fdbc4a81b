// Package metrics is the Prometheus instrumentation for the VM supervisor:
// session lifecycle counters and a duration histogram, registered against
// the default registry the way pkg/metrics registers cluster gauges in the
// teacher, and exposed over HTTP via promhttp for a Prometheus scraper.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsStartedTotal counts every successful hypervisor spawn,
	// regardless of whether the readiness handshake later succeeds. A
	// spawn that fails is not counted.
	SessionsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "piworkd_vm_sessions_started_total",
			Help: "Total number of VM sessions started",
		},
	)

	// SessionsStoppedTotal counts every teardown, labeled by outcome:
	// "error" when the watcher's rpc connect failed, "ok" for an explicit
	// Stop or an EOF on the RPC socket.
	SessionsStoppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piworkd_vm_sessions_stopped_total",
			Help: "Total number of VM sessions stopped, labeled by outcome",
		},
		[]string{"outcome"},
	)

	// SessionActive is 1 while a VM session occupies the supervisor's
	// instance slot, 0 otherwise.
	SessionActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "piworkd_vm_session_active",
			Help: "Whether a VM session is currently live (1) or not (0)",
		},
	)

	// SessionDurationSeconds observes the wall-clock lifetime of each
	// session from Start to teardown.
	SessionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "piworkd_vm_session_duration_seconds",
			Help:    "VM session lifetime from start to teardown, in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(SessionsStartedTotal)
	prometheus.MustRegister(SessionsStoppedTotal)
	prometheus.MustRegister(SessionActive)
	prometheus.MustRegister(SessionDurationSeconds)
}

// RecordStart increments SessionsStartedTotal and marks a session active.
func RecordStart() {
	SessionsStartedTotal.Inc()
	SessionActive.Set(1)
}

// RecordStop marks no session active, observes its duration, and
// increments SessionsStoppedTotal under the "error" outcome if failed is
// true, "ok" otherwise.
func RecordStop(durationSeconds float64, failed bool) {
	SessionActive.Set(0)
	SessionDurationSeconds.Observe(durationSeconds)
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	SessionsStoppedTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler a caller mounts at "/metrics" for a
// Prometheus scraper.
func Handler() http.Handler {
	return promhttp.Handler()
}
