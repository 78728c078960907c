package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alarmclock"

// Recorder records alarm clock metrics.
type Recorder struct {
	registry         *prom.Registry
	alarmsScheduled  prom.Gauge
	alarmsFired      prom.Counter
	snoozes          prom.Counter
	ringing          prom.Gauge
	playbackFailures prom.Counter
	requests         *prom.CounterVec
}

// NewRecorder constructs the metrics and registers them on reg, or on a
// fresh registry when reg is nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		registry: reg,
		alarmsScheduled: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "alarms_scheduled",
			Help:      "Number of alarms waiting to fire",
		}),
		alarmsFired: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_fired_total",
			Help:      "Alarms that reached their time and were removed",
		}),
		snoozes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snoozes_total",
			Help:      "Ringing alarms rescheduled by snooze",
		}),
		ringing: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "ringing",
			Help:      "1 while a tone is ringing",
		}),
		playbackFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "playback_failures_total",
			Help:      "Tones that could not be played",
		}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "control_requests_total",
			Help:      "Control API requests by method and status code",
		}, []string{"method", "code"}),
	}

	reg.MustRegister(r.alarmsScheduled, r.alarmsFired, r.snoozes, r.ringing, r.playbackFailures, r.requests)

	return r
}

// SetScheduled records the number of scheduled alarms.
func (r *Recorder) SetScheduled(n int) {
	if r == nil {
		return
	}

	r.alarmsScheduled.Set(float64(n))
}

// IncFired counts a fired alarm.
func (r *Recorder) IncFired() {
	if r == nil {
		return
	}

	r.alarmsFired.Inc()
}

// IncSnooze counts a snooze.
func (r *Recorder) IncSnooze() {
	if r == nil {
		return
	}

	r.snoozes.Inc()
}

// SetRinging records whether a tone rings.
func (r *Recorder) SetRinging(ringing bool) {
	if r == nil {
		return
	}

	if ringing {
		r.ringing.Set(1)
	} else {
		r.ringing.Set(0)
	}
}

// IncPlaybackFailure counts a tone that could not be played.
func (r *Recorder) IncPlaybackFailure() {
	if r == nil {
		return
	}

	r.playbackFailures.Inc()
}

// IncRequest counts a control request.
func (r *Recorder) IncRequest(method, code string) {
	if r == nil {
		return
	}

	r.requests.WithLabelValues(method, code).Inc()
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
