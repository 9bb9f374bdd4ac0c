package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/products", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.OrderOperation("cancel", "conflict")
	m.StepFailed("decrement_stock:12")
	m.StepFailed("decrement_stock:13")
	m.EventDropped()

	require.Equal(t, 1.0, testutil.ToFloat64(m.orderOps.WithLabelValues("cancel", "conflict")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.stepFailures.WithLabelValues("decrement_stock")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.droppedEvents))
}

func TestStreamGauge(t *testing.T) {
	m := New()
	closeA := m.StreamOpened("tracker")
	closeB := m.StreamOpened("tracker")
	require.Equal(t, 2.0, testutil.ToFloat64(m.activeStreams.WithLabelValues("tracker")))
	closeA()
	closeB()
	require.Equal(t, 0.0, testutil.ToFloat64(m.activeStreams.WithLabelValues("tracker")))
}

func TestTrackedCustomersGauge(t *testing.T) {
	m := New()
	active := 3
	m.TrackedCustomers(func() int { return active })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "bakehouse_realtime_tracked_customers 3")

	active = 0
	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "bakehouse_realtime_tracked_customers 0")
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.OrderOperation("submit", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "bakehouse_order_operations_total"))
}
