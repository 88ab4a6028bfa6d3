package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProbeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netwatch_probe_total",
			Help: "Probe executions by probe ID and result (ok/fail).",
		},
		[]string{"probe", "result"},
	)
	AlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netwatch_alerts_total",
			Help: "Confirmed outages surfaced to the alert sink.",
		},
	)
	ReloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netwatch_reloads_total",
			Help: "Control-state reloads applied by the watchdog.",
		},
	)
)

func init() {
	prometheus.MustRegister(ProbeTotal, AlertsTotal, ReloadsTotal)
}

// RecordProbe bumps the probe counter with a normalized result label.
func RecordProbe(probeID string, ok bool) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	ProbeTotal.WithLabelValues(probeID, result).Inc()
}
