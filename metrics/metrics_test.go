package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsExposition(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/rooms", 200, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/rooms", 200, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)
	m.ObserveAudit(AuditWritten)
	m.ObserveAudit(AuditFailed)
	m.ObserveAudit(AuditDropped)
	m.SetLiveClients(3)

	body := scrape(t, m)
	assert.Contains(t, body, `hotel_ops_http_requests_total{method="GET",route="/api/rooms",status="200"} 2`)
	assert.Contains(t, body, `hotel_ops_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `hotel_ops_audit_entries_total{result="written"} 1`)
	assert.Contains(t, body, `hotel_ops_audit_entries_total{result="failed"} 1`)
	assert.Contains(t, body, `hotel_ops_audit_entries_total{result="dropped"} 1`)
	assert.Contains(t, body, `hotel_ops_live_clients 3`)
	assert.Contains(t, body, `go_goroutines`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.ObserveAudit(AuditWritten)
		m.SetLiveClients(1)
	})
}
