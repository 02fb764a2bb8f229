package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/industry-portal/internal/apperr"
)

func TestMiddleware_LabelsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/dashboard/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for _, p := range []string{"/api/dashboard/1", "/api/dashboard/2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCount.WithLabelValues("GET", "/api/dashboard/:id", "204")))
}

func TestObserveLogin_CountsByOutcome(t *testing.T) {
	m := New()
	m.ObserveLogin(LoginFailure)
	m.ObserveLogin(LoginFailure)
	m.ObserveLogin(LoginLocked)
	m.ObserveLockout()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginLocked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lockouts))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLogin(LoginSuccess)
		m.ObserveRegistration("tour")
		m.ObserveRevocation()
		m.ObserveLockout()
	})
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRegistration("travel")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `industry_portal_auth_registrations_total{industry_type="travel"} 1`))
}

func TestMiddleware_StatusFromAppError(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/locked", func(c echo.Context) error { return apperr.ErrAccountLocked })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/locked", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCount.WithLabelValues(http.MethodGet, "/locked", "401")))
}
