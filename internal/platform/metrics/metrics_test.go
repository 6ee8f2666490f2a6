package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementUsersCreated()
	m.IncrementSignIn("success")
	m.IncrementSignIn("success")
	m.IncrementRecordWrite("usuarios", "create")
	m.IncrementPostalCache("hit")
	m.ObservePostalLookup("found", 20*time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.UsersCreated), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.SignIns.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordsWritten.WithLabelValues("usuarios", "create")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PostalCache.WithLabelValues("hit")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.PostalLookups))
}
