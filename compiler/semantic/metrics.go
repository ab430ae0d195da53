package semantic

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts compiles.  A nil *Metrics is valid and counts nothing.
type Metrics struct {
	Statements       *prometheus.CounterVec
	Failures         *prometheus.CounterVec
	ImplicitJoins    prometheus.Counter
	StrictViolations *prometheus.CounterVec
}

// NewMetrics creates the compile metrics and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	const (
		namespace = "sqm"
		subsystem = "semantic"
	)
	m := &Metrics{
		Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "statements_total",
			Help:      "Count of statements compiled successfully, by statement kind",
		}, []string{"kind"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "Count of failed compiles, by error class",
		}, []string{"error"}),
		ImplicitJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "implicit_joins_total",
			Help:      "Count of joins created by path dereference",
		}),
		StrictViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "strict_violations_total",
			Help:      "Count of strict compliance violations, by violation type",
		}, []string{"violation"}),
	}
	if reg != nil {
		for _, c := range m.PrometheusCollectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Statements,
		m.Failures,
		m.ImplicitJoins,
		m.StrictViolations,
	}
}

func (m *Metrics) statement(kind string) {
	if m != nil {
		m.Statements.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) implicitJoin() {
	if m != nil {
		m.ImplicitJoins.Inc()
	}
}

func (m *Metrics) failure(err error) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(errorClass(err)).Inc()
	var strict *StrictComplianceError
	if errors.As(err, &strict) {
		m.StrictViolations.WithLabelValues(strict.Type.String()).Inc()
	}
}

func errorClass(err error) string {
	var (
		parsing  *ParsingError
		unknown  *UnknownEntityError
		strict   *StrictComplianceError
		literal  *LiteralNumberFormatError
		alias    *AliasCollisionError
		nyi      *NotYetImplementedError
		semantic *SemanticError
	)
	switch {
	case errors.As(err, &parsing):
		return "parsing"
	case errors.As(err, &unknown):
		return "unknown_entity"
	case errors.As(err, &strict):
		return "strict_compliance"
	case errors.As(err, &literal):
		return "literal_format"
	case errors.As(err, &alias):
		return "alias_collision"
	case errors.As(err, &nyi):
		return "not_implemented"
	case errors.As(err, &semantic):
		return "semantic"
	}
	return "other"
}
