package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("/listings/search/", 200, 15*time.Millisecond)
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("/listings/search/", "200")))

	before := testutil.ToFloat64(bookingsCompleted)
	AddCompleted(3)
	AddCompleted(0)
	AddCompleted(-1)
	assert.Equal(t, before+3, testutil.ToFloat64(bookingsCompleted))

	IncSearchCache(true)
	IncSearchCache(false)
	IncSearchCache(false)
	assert.Equal(t, float64(1), testutil.ToFloat64(searchCache.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(searchCache.WithLabelValues("miss")))

	IncBookingEvent("booking_created")
	assert.Equal(t, float64(1), testutil.ToFloat64(bookingEvents.WithLabelValues("booking_created")))

	IncSyncTask("retry")
	assert.Equal(t, float64(1), testutil.ToFloat64(syncTasks.WithLabelValues("retry")))
}
