package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestRecorder_Values updates every metric and reads it back.
func TestRecorder_Values(t *testing.T) {
	t.Parallel()

	r := NewRecorder(prom.NewRegistry())

	r.SetScheduled(3)
	r.IncFired()
	r.IncFired()
	r.IncSnooze()
	r.SetRinging(true)
	r.IncPlaybackFailure()
	r.IncRequest("AddAlarm", "OK")

	require.InDelta(t, 3, testutil.ToFloat64(r.alarmsScheduled), 0)
	require.InDelta(t, 2, testutil.ToFloat64(r.alarmsFired), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.snoozes), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.ringing), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.playbackFailures), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.requests.WithLabelValues("AddAlarm", "OK")), 0)

	r.SetRinging(false)
	require.InDelta(t, 0, testutil.ToFloat64(r.ringing), 0)
}

// TestRecorder_NilSafe allows components to run without metrics.
func TestRecorder_NilSafe(t *testing.T) {
	t.Parallel()

	var r *Recorder

	require.NotPanics(t, func() {
		r.SetScheduled(1)
		r.IncFired()
		r.IncSnooze()
		r.SetRinging(true)
		r.IncPlaybackFailure()
		r.IncRequest("Snooze", "FailedPrecondition")
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// TestRecorder_Handler exposes the registered metrics.
func TestRecorder_Handler(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	r.IncFired()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "alarmclock_alarms_fired_total 1")
}
