package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the console.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	backendDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	actions         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	transfers       *prometheus.CounterVec
	probes          *prometheus.CounterVec
	sessions        prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// console metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_backend_request_duration_seconds",
				Help:    "Duration of wallet backend calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_backend_errors_total",
				Help: "Failed wallet backend calls by error kind.",
			},
			[]string{"kind"},
		),
		actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_screen_actions_total",
				Help: "Screen actions by outcome.",
			},
			[]string{"screen", "action", "outcome"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_notifications_total",
				Help: "Notifications shown, by kind.",
			},
			[]string{"kind"},
		),
		transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_transfers_total",
				Help: "Wallet transfers by outcome.",
			},
			[]string{"outcome"},
		),
		probes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_existence_probes_total",
				Help: "Existence probes by entity and result.",
			},
			[]string{"entity", "result"},
		),
		sessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_sessions_active",
				Help: "Operator sessions currently logged in.",
			},
		),
	}
}

// RecordBackendCall records the duration of a backend operation.
func (m *Metrics) RecordBackendCall(operation string, d time.Duration) {
	m.backendDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrBackendError increments the backend error counter.
func (m *Metrics) IncrBackendError(kind string) {
	m.backendErrors.WithLabelValues(kind).Inc()
}

// IncrAction counts a settled screen action.
func (m *Metrics) IncrAction(screen, action, outcome string) {
	m.actions.WithLabelValues(screen, action, outcome).Inc()
}

// IncrNotification counts a notification of the given kind ("error"/"success").
func (m *Metrics) IncrNotification(kind string) {
	m.notifications.WithLabelValues(kind).Inc()
}

// IncrTransfer counts a transfer attempt outcome.
func (m *Metrics) IncrTransfer(outcome string) {
	m.transfers.WithLabelValues(outcome).Inc()
}

// IncrProbe counts an existence probe.
func (m *Metrics) IncrProbe(entity string, exists bool) {
	result := "absent"
	if exists {
		result = "present"
	}
	m.probes.WithLabelValues(entity, result).Inc()
}

// SessionOpened / SessionClosed track logged-in operators.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }
func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// GatewayStats is the snapshot served by GET /v1/metrics/gateway.
type GatewayStats struct {
	BackendErrors     map[string]float64 `json:"backendErrors"`
	TransfersOK       float64            `json:"transfersSucceeded"`
	TransfersFailed   float64            `json:"transfersFailed"`
	TransfersRejected float64            `json:"transfersInvalid"`
	ErrorNotices      float64            `json:"errorNotifications"`
	SuccessNotices    float64            `json:"successNotifications"`
	ActiveSessions    float64            `json:"activeSessions"`
}

// Snapshot reads the current counter values.
func (m *Metrics) Snapshot() *GatewayStats {
	errs := make(map[string]float64)
	for _, kind := range []string{"not_found", "rejected", "network"} {
		errs[kind] = getCounterValue(m.backendErrors, kind)
	}

	g := &dto.Metric{}
	active := float64(0)
	if err := m.sessions.Write(g); err == nil && g.Gauge != nil {
		active = g.Gauge.GetValue()
	}

	return &GatewayStats{
		BackendErrors:     errs,
		TransfersOK:       getCounterValue(m.transfers, "success"),
		TransfersFailed:   getCounterValue(m.transfers, "failure"),
		TransfersRejected: getCounterValue(m.transfers, "invalid"),
		ErrorNotices:      getCounterValue(m.notifications, "error"),
		SuccessNotices:    getCounterValue(m.notifications, "success"),
		ActiveSessions:    active,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
