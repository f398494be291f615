package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("babymax")
	b := NewCollector("babymax")

	a.ObserveRequest(http.MethodGet, "/api/babies", 200, 20*time.Millisecond)
	a.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.HTTPRequests.WithLabelValues("GET", "/api/babies", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("GET", "/api/babies", "200")))
}

func TestCollector_DomainCounters(t *testing.T) {
	c := NewCollector("babymax")
	c.EventRecorded("feeding")
	c.EventRecorded("feeding")
	c.ProfileUpdated(true)
	c.ProfileUpdated(false)
	c.AuthFailed("invalid_token")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.EventsRecorded.WithLabelValues("feeding")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProfileUpdates.WithLabelValues("journaled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProfileUpdates.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AuthFailures.WithLabelValues("invalid_token")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("babymax")
	c.EventRecorded("diaper")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `babymax_care_events_recorded_total{kind="diaper"} 1`)
}
