package auth

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionRecorder receives authentication outcomes
type DecisionRecorder interface {
	RecordDecision(kind FailureKind, adminRequired bool)
	RecordError(adminRequired bool)
}

// TokenRecorder receives token lifecycle events
type TokenRecorder interface {
	RecordIssued()
	RecordRevocation()
}

type noopDecisionRecorder struct{}

func (noopDecisionRecorder) RecordDecision(FailureKind, bool) {}
func (noopDecisionRecorder) RecordError(bool)                 {}

type noopTokenRecorder struct{}

func (noopTokenRecorder) RecordIssued()     {}
func (noopTokenRecorder) RecordRevocation() {}

// Metrics exports authentication counters to Prometheus
type Metrics struct {
	decisions   *prometheus.CounterVec
	revocations prometheus.Counter
	issued      prometheus.Counter
}

var (
	_ DecisionRecorder = (*Metrics)(nil)
	_ TokenRecorder    = (*Metrics)(nil)
)

// NewMetrics registers the auth collectors on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "widget_api",
			Subsystem: "auth",
			Name:      "decisions_total",
			Help:      "Authentication decisions by outcome.",
		}, []string{"outcome", "admin_required"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "widget_api",
			Subsystem: "auth",
			Name:      "revocations_total",
			Help:      "Tokens added to the revocation store.",
		}),
		issued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "widget_api",
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued on register or login.",
		}),
	}

	for _, c := range []prometheus.Collector{m.decisions, m.revocations, m.issued} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) RecordDecision(kind FailureKind, adminRequired bool) {
	outcome := "success"
	if kind != FailureNone {
		outcome = kind.String()
	}
	m.decisions.WithLabelValues(outcome, strconv.FormatBool(adminRequired)).Inc()
}

func (m *Metrics) RecordError(adminRequired bool) {
	m.decisions.WithLabelValues("error", strconv.FormatBool(adminRequired)).Inc()
}

// RecordRevocation counts a logout
func (m *Metrics) RecordRevocation() {
	m.revocations.Inc()
}

// RecordIssued counts an issued token
func (m *Metrics) RecordIssued() {
	m.issued.Inc()
}

// Decisions exposes the decision counter, mostly for tests
func (m *Metrics) Decisions() *prometheus.CounterVec {
	return m.decisions
}
