package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues(CacheHit))

	RecordCacheLookup(CacheHit)
	RecordCacheLookup(CacheHit)

	assert.Equal(t, before+2, testutil.ToFloat64(CacheLookups.WithLabelValues(CacheHit)))
}

func TestRecordCacheInvalidation(t *testing.T) {
	before := testutil.ToFloat64(CacheInvalidations.WithLabelValues(InvalidationError))

	RecordCacheInvalidation(InvalidationError)

	assert.Equal(t, before+1, testutil.ToFloat64(CacheInvalidations.WithLabelValues(InvalidationError)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordHTTPRequestDuration("GET", "/tasks", "200", 15*time.Millisecond)
	RecordCacheLookup(CacheMiss)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tasktrack_http_request_duration_seconds")
	assert.Contains(t, string(body), `tasktrack_cache_lookups_total{result="miss"}`)
}
