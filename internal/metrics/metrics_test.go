package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/api/chat", "POST", 200, 10*time.Millisecond)
	m.ObserveRequest("/api/chat", "POST", 200, 20*time.Millisecond)
	m.ObserveRequest("/api/chat", "GET", 405, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/chat", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/chat", "GET", "405")))
}

func TestObserveUpstream(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUpstream("rest", OutcomeSuccess, time.Second)
	m.ObserveUpstream("rest", OutcomeFallback, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("rest", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("rest", OutcomeFallback)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("/", "GET", 200, time.Millisecond)
		m.ObserveUpstream("rest", OutcomeSuccess, time.Millisecond)
	})
}
