package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.GuestRegistered()
	m.StayOpened(0)
	m.StayOpened(2)
	m.StayCancelled()
	m.LoginAttempt(LoginSuccess)
	m.LoginAttempt(LoginFailure)
	m.LoginAttempt(LoginFailure)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuestsRegistered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StaysOpened))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StaysSuperseded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaysCancelled))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginFailure)))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GuestRegistered()
		m.StayOpened(1)
		m.StayCancelled()
		m.LoginAttempt(LoginError)
	})
}
