package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RegistrationAttempt("created")
	r.RegistrationAttempt("duplicate")
	r.LoginAttempt("success")
	r.LoginAttempt("success")
	r.SessionResolved("invalid_token")
	r.DayEntrySaved(120)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.registrations.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.registrations.WithLabelValues("duplicate")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.logins.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sessions.WithLabelValues("invalid_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.daysSaved))

	n, err := testutil.GatherAndCount(reg, "planner_day_entry_payload_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
