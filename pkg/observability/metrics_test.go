package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsDoNotCollide(t *testing.T) {
	a := NewCollector("tree")
	b := NewCollector("tree")

	a.ObserveReplacement()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.TreeReplacements))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TreeReplacements))
}

func TestObserveStoreWrite(t *testing.T) {
	c := NewCollector("tree")

	c.ObserveStoreWrite("file", time.Millisecond, nil)
	c.ObserveStoreWrite("file", time.Millisecond, errors.New("disk full"))
	c.ObserveStoreWrite("file", time.Millisecond, errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreWrites.WithLabelValues("file", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.StoreWrites.WithLabelValues("file", "error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("tree")
	c.RecordHTTPRequest("GET", "/api/tree", 200, 5*time.Millisecond)
	c.ObserveRejection("PEOPLE_NOT_ARRAY")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tree_http_requests_total{method="GET",route="/api/tree",status="200"} 1`)
	assert.Contains(t, string(body), `tree_shape_rejections_total{reason="PEOPLE_NOT_ARRAY"} 1`)
}

func TestTraceFunctionReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := NewTracer("test").TraceFunction(context.Background(), "op", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
