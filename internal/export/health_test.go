package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	return log
}

func startHealth(t *testing.T) *HealthMetrics {
	t.Helper()

	h := NewHealthMetrics(testLog(), HealthConfig{
		Addr: "127.0.0.1:0",
	})

	require.NoError(t, h.Start(context.Background()))

	t.Cleanup(func() {
		h.Stop()
	})

	// Give server a moment to start serving.
	time.Sleep(50 * time.Millisecond)

	return h
}

func scrape(t *testing.T, h *HealthMetrics, path string) (int, string) {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("http://%s%s", h.Addr(), path))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestHealthMetrics_StartStop(t *testing.T) {
	h := startHealth(t)
	assert.True(t, h.running.Load())
	assert.NotEmpty(t, h.Addr())
}

func TestHealthMetrics_CounterIncrement(t *testing.T) {
	h := startHealth(t)

	h.ReportsTotal.Inc()
	h.ReportsTotal.Inc()
	h.ReportErrors.Inc()
	h.CurrentWindow.Set(42)
	h.ProbeRuns.WithLabelValues("sleep").Add(3)
	h.SinkExportErrors.WithLabelValues("http").Inc()

	status, body := scrape(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "proftimer_reports_total 2")
	assert.Contains(t, body, "proftimer_report_errors_total 1")
	assert.Contains(t, body, "proftimer_current_window 42")
	assert.Contains(t, body, `proftimer_probe_runs_total{probe="sleep"} 3`)
	assert.Contains(t, body, `proftimer_sink_export_errors_total{sink="http"} 1`)
}

func TestHealthMetrics_RegisterCollector(t *testing.T) {
	h := startHealth(t)

	extra := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "extra_total",
		Help: "Extra collector.",
	})
	require.NoError(t, h.Register(extra))
	extra.Add(7)

	// Registering the same collector twice is rejected.
	require.Error(t, h.Register(extra))

	_, body := scrape(t, h, "/metrics")
	assert.Contains(t, body, "extra_total 7")
}

func TestHealthMetrics_HealthzResponse(t *testing.T) {
	h := startHealth(t)

	status, body := scrape(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestHealthMetrics_StopIdempotent(t *testing.T) {
	h := NewHealthMetrics(testLog(), HealthConfig{})

	assert.NoError(t, h.Stop())
	assert.NoError(t, h.Stop())
}

func TestHealthMetrics_AddrBeforeStart(t *testing.T) {
	h := NewHealthMetrics(testLog(), HealthConfig{
		Addr: ":9999",
	})

	assert.Equal(t, ":9999", h.Addr())
}
