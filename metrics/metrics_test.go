package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecli.dev/argspec/metrics"
)

func TestCollectorObserve(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector()
	c.ObserveParse(metrics.OutcomeSuccess, 5*time.Millisecond)
	c.ObserveParse(metrics.OutcomeError, time.Millisecond)
	c.ObserveValidateWarnings(3)
	c.ObserveProfileDuration(10 * time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "argspec_parse_total")
	assert.Contains(t, body, "argspec_validate_warnings_total 3")
	assert.Contains(t, body, "argspec_profile_session_duration_seconds")
}

func TestCollectorIsolated(t *testing.T) {
	t.Parallel()

	a := metrics.NewCollector()
	b := metrics.NewCollector()

	a.ObserveParse(metrics.OutcomeSuccess, time.Millisecond)

	recA := httptest.NewRecorder()
	a.Handler().ServeHTTP(recA, httptest.NewRequest("GET", "/metrics", nil))

	recB := httptest.NewRecorder()
	b.Handler().ServeHTTP(recB, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, recA.Body.String(), `outcome="success"`)
	assert.NotContains(t, recB.Body.String(), `outcome="success"`)
}
