package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	c := New()
	c.ObserveFetch("adzuna", "search", 10*time.Millisecond, nil)
	c.ObserveFetch("adzuna", "search", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.SourceFetches.WithLabelValues("adzuna", "search", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SourceFetches.WithLabelValues("adzuna", "search", OutcomeError)))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveFetch("x", "refresh", time.Second, nil)
	c.ObserveScoring("x", nil)
	c.ObserveGraphAdd(nil)
	c.QueueDelta("x", 1)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, w.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.ObserveGraphAdd(nil)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `careerlift_graph_add_total{outcome="ok"} 1`))
}
