package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/pkg/metrics"
)

func TestNew_RegistraCollectores(t *testing.T) {
	m := metrics.New()
	m.AuditFailures.Inc()
	m.AuthFailures.WithLabelValues("bad_password").Inc()
	m.ObserveHTTPRequest("GET", "/api/vehicles", 200, 10*time.Millisecond)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["flota_audit_write_failures_total"])
	assert.True(t, names["flota_auth_login_failures_total"])
	assert.True(t, names["flota_http_request_duration_seconds"])
	assert.True(t, names["go_goroutines"])
}

func TestJobMetrics_CuentaPorResultado(t *testing.T) {
	m := metrics.New()
	m.Jobs.Observe("purge", time.Second, nil)
	m.Jobs.Observe("purge", time.Second, errors.New("db caída"))
	m.Jobs.Observe("purge", time.Second, nil)

	n, err := testutil.GatherAndCount(m.Registry, "flota_job_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(m.Registry, "flota_job_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJobMetrics_SinRegistryNoFalla(t *testing.T) {
	j := metrics.NewJobMetrics(nil)
	assert.NotPanics(t, func() { j.Observe("purge", time.Second, nil) })

	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveHTTPRequest("GET", "", 200, time.Millisecond) })
}
