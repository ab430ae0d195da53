package semantic_test

import (
	"testing"

	"github.com/brimdata/sqm/compiler/parser"
	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := semantic.NewMetrics(reg)
	require.NoError(t, err)
	model := loadModel(t)
	run := func(query string, strict bool) {
		p, err := parser.ParseQuery(query)
		require.NoError(t, err)
		ctx := semantic.NewContext(model, semantic.Options{Strict: strict, Metrics: metrics})
		semantic.Analyze(p.Parsed(), ctx)
	}
	run("select p.employer.name, p.mate.name from Person p", false)
	run("delete from Person p where p.employer.name = 'x'", false)
	run("select p from Persn p", false)
	run("from Person", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Statements.WithLabelValues("select")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Statements.WithLabelValues("delete")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ImplicitJoins))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues("unknown_entity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues("strict_compliance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StrictViolations.WithLabelValues("implicit select")))
	assert.Equal(t, 4, testutil.CollectAndCount(metrics.Statements)+testutil.CollectAndCount(metrics.Failures))

	_, err = semantic.NewMetrics(reg)
	assert.Error(t, err, "metrics registered twice")
}

func TestNilMetrics(t *testing.T) {
	_, _, err := compile(t, "select p.employer from Person p", semantic.Options{})
	assert.NoError(t, err)
	m, err := semantic.NewMetrics(nil)
	require.NoError(t, err)
	assert.Len(t, m.PrometheusCollectors(), 4)
}
