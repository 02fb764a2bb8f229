package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/industry-portal/internal/apperr"
	"github.com/iliyamo/industry-portal/internal/middleware"
	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/service"
)

// IndustryService is what the dashboard endpoints need from
// service.IndustryService.
type IndustryService interface {
	ResolveProfile(ctx context.Context, userID uuid.UUID, t model.IndustryType) (model.Profile, error)
	UpdateProfile(ctx context.Context, u model.User, body json.RawMessage) (model.Profile, model.IndustryType, error)
	DashboardData(ctx context.Context, u model.User) (service.Dashboard, error)
	NavigationMenu(t model.IndustryType) []service.NavItem
	DashboardRoute(t model.IndustryType) string
	PaymentOptions(t model.IndustryType) []service.PaymentOption
}

// DashboardHandler serves /api/dashboard.  Every route runs behind
// Authenticate.
type DashboardHandler struct {
	Industry IndustryService
	Timeout  time.Duration
}

func NewDashboardHandler(s IndustryService, timeout time.Duration) *DashboardHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DashboardHandler{Industry: s, Timeout: timeout}
}

func (h *DashboardHandler) user(c echo.Context) (model.User, error) {
	u, found := middleware.CurrentUser(c)
	if !found {
		return model.User{}, apperr.ErrUnauthenticated
	}
	return u, nil
}

// Dashboard returns the dashboard of the caller's industry together with the
// client route that renders it.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	d, err := h.Industry.DashboardData(ctx, u)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"dashboard":      d,
		"navigation":     h.Industry.NavigationMenu(u.Industry),
		"dashboardRoute": h.Industry.DashboardRoute(u.Industry),
		"industryType":   u.Industry,
	})
}

// IndustryDashboard serves the dashboard of one industry.  The route is
// guarded by RequireIndustry(t), so the caller's industry is t.
func (h *DashboardHandler) IndustryDashboard(t model.IndustryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := h.user(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
		defer cancel()

		d, err := h.Industry.DashboardData(ctx, u)
		if err != nil {
			return err
		}
		return ok(c, http.StatusOK, "", echo.Map{
			"dashboard":    d,
			"navigation":   h.Industry.NavigationMenu(t),
			"industryType": t,
		})
	}
}

// GetProfile returns the caller's industry profile, or null.
func (h *DashboardHandler) GetProfile(c echo.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, err := h.Industry.ResolveProfile(ctx, u.ID, u.Industry)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"industryProfile": p,
		"industryType":    u.Industry,
	})
}

// UpdateProfile applies an optional industryType change and upserts the
// remaining fields into the profile.
func (h *DashboardHandler) UpdateProfile(c echo.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errBadBody
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, industry, err := h.Industry.UpdateProfile(ctx, u, body)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Industry profile updated successfully", echo.Map{
		"profile":      p,
		"industryType": industry,
	})
}

// Navigation returns the caller's navigation menu.
func (h *DashboardHandler) Navigation(c echo.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"navigation":   h.Industry.NavigationMenu(u.Industry),
		"industryType": u.Industry,
	})
}

// PaymentOptions lists the payment methods offered to the caller's industry.
func (h *DashboardHandler) PaymentOptions(c echo.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", echo.Map{"methods": h.Industry.PaymentOptions(u.Industry)})
}
