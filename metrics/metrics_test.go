package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsDurationAndCount(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/knockouts/:view", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/broken", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/knockouts/genes", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/knockouts/:view", "200")), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/broken", "400")), float64(1))
	assert.NotZero(t, testutil.CollectAndCount(httpRequestDuration))
}

func TestObserveOperation(t *testing.T) {
	done := ObserveOperation("count")
	done()

	assert.NotZero(t, testutil.CollectAndCount(EngineOperationDuration))
}
