package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := New()

	c.SessionStarted(false)
	c.SessionStarted(true)
	c.SessionCompleted(true, 40)
	c.Persisted("queued")
	c.Persisted("queued")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.contentFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessionsCompleted.WithLabelValues("timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.persistOutcomes.WithLabelValues("queued")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.SessionStarted(true)
	c.SessionCompleted(false, 100)
	c.Persisted("submitted")
}
