// Package metrics exposes the registry's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes recorded by LoginAttempt.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginError   = "error"
)

// Metrics implements registry.Recorder.  A nil *Metrics records nothing.
type Metrics struct {
	GuestsRegistered prometheus.Counter
	StaysOpened      prometheus.Counter
	StaysSuperseded  prometheus.Counter
	StaysCancelled   prometheus.Counter
	LoginAttempts    *prometheus.CounterVec
}

// New registers the counters on reg.  Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GuestsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "inn_guests_registered_total",
			Help: "Total number of guests registered",
		}),
		StaysOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "inn_stays_opened_total",
			Help: "Total number of stays opened, including first stays",
		}),
		StaysSuperseded: f.NewCounter(prometheus.CounterOpts{
			Name: "inn_stays_superseded_total",
			Help: "Total number of active stays completed because a newer stay was opened",
		}),
		StaysCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "inn_stays_cancelled_total",
			Help: "Total number of stay cancellations",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inn_login_attempts_total",
			Help: "Admin login attempts by outcome",
		}, []string{"outcome"}),
	}
}

// GuestRegistered counts one new guest.
func (m *Metrics) GuestRegistered() {
	if m == nil {
		return
	}
	m.GuestsRegistered.Inc()
}

// StayOpened counts one new stay and the stays it superseded.
func (m *Metrics) StayOpened(superseded int) {
	if m == nil {
		return
	}
	m.StaysOpened.Inc()
	if superseded > 0 {
		m.StaysSuperseded.Add(float64(superseded))
	}
}

// StayCancelled counts one cancellation.
func (m *Metrics) StayCancelled() {
	if m == nil {
		return
	}
	m.StaysCancelled.Inc()
}

// LoginAttempt counts one login by outcome.
func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}
