package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/industry-portal/internal/apperr"
	"github.com/iliyamo/industry-portal/internal/middleware"
	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/service"
	"github.com/iliyamo/industry-portal/internal/token"
)

// AuthService is what the auth endpoints need from service.AuthService.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (service.AuthResult, error)
	Refresh(ctx context.Context, raw string) (service.AuthResult, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, in service.ChangePasswordInput) error
	Logout(ctx context.Context, access *token.Claims, refreshRaw string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth    AuthService
	Cookies CookieManager
	Timeout time.Duration
	Log     *zap.Logger
}

func NewAuthHandler(a AuthService, cookies CookieManager, timeout time.Duration, log *zap.Logger) *AuthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Auth: a, Cookies: cookies, Timeout: timeout, Log: log}
}

// ----- DTOs -----

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type authResp struct {
	User         model.UserView `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

type tokensResp struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newAuthResp(r service.AuthResult) authResp {
	return authResp{
		User:         r.User.View(),
		AccessToken:  r.Tokens.Access.Token,
		RefreshToken: r.Tokens.Refresh.Token,
	}
}

var errBadBody = apperr.Validation("Invalid request body")

func (h *AuthHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Register: create the user, set the access cookie and return both tokens.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return errBadBody
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	h.Cookies.Set(c, res.Tokens.Access.Token)
	return ok(c, http.StatusCreated, "User registered successfully", newAuthResp(res))
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return errBadBody
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req)
	if err != nil {
		return err
	}
	h.Cookies.Set(c, res.Tokens.Access.Token)
	return ok(c, http.StatusOK, "Login successful", newAuthResp(res))
}

// Refresh: exchange a refresh token for a new pair and rotate the cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return errBadBody
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	h.Cookies.Set(c, res.Tokens.Access.Token)
	return ok(c, http.StatusOK, "Tokens refreshed successfully", tokensResp{
		AccessToken:  res.Tokens.Access.Token,
		RefreshToken: res.Tokens.Refresh.Token,
	})
}

// Me returns the current user; it runs behind OptionalAuthenticate.
func (h *AuthHandler) Me(c echo.Context) error {
	u, found := middleware.CurrentUser(c)
	if !found {
		return apperr.ErrUnauthenticated.WithMessage("Not authenticated")
	}
	return ok(c, http.StatusOK, "", echo.Map{"user": u.View()})
}

// ChangePassword checks the current password and stores the new one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, found := middleware.CurrentUser(c)
	if !found {
		return apperr.ErrUnauthenticated
	}
	var req service.ChangePasswordInput
	if err := c.Bind(&req); err != nil {
		return errBadBody
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, u.ID, req); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Password changed successfully", nil)
}

// Logout revokes the access token (and a refresh token sent in the body)
// and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, found := middleware.CurrentClaims(c)
	if !found {
		return apperr.ErrUnauthenticated
	}
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, claims, req.RefreshToken); err != nil {
		return err
	}
	h.Cookies.Clear(c)
	return ok(c, http.StatusOK, "Logout successful", nil)
}
