package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/industry-portal/internal/middleware"
)

// CookieManager writes the access_token cookie.  MaxAge follows the access
// token lifetime so the cookie never outlives the token it carries.
type CookieManager struct {
	Secure bool
	TTL    time.Duration
}

func (m CookieManager) Set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(m.TTL / time.Second),
		Expires:  time.Now().Add(m.TTL),
	})
}

func (m CookieManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
