package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/token"
)

// AccessCookie is the cookie carrying the access token for browser clients.
const AccessCookie = "access_token"

// Authenticator resolves an access token to a user.  *service.AuthService
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (model.User, *token.Claims, error)
}

// TokenFromRequest returns the bearer token of the Authorization header or,
// when there is none, the access_token cookie.
func TokenFromRequest(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		if raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); raw != "" {
			return raw
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// DefaultAuthTimeout bounds the user and denylist lookups of one
// authentication when no timeout is configured.
const DefaultAuthTimeout = 5 * time.Second

func authenticate(c echo.Context, a Authenticator, raw string, timeout time.Duration) (model.User, *token.Claims, error) {
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()
	return a.Authenticate(ctx, raw)
}

// Authenticate rejects requests without a valid access token.  On success
// the user row and token claims are stored on the context.  The lookup runs
// under timeout.
func Authenticate(a Authenticator, timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, claims, err := authenticate(c, a, TokenFromRequest(c), timeout)
			if err != nil {
				return err
			}
			setIdentity(c, u, claims)
			return next(c)
		}
	}
}

// OptionalAuthenticate binds the user when a usable token is present and
// otherwise lets the request through anonymously.
func OptionalAuthenticate(a Authenticator, timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := TokenFromRequest(c); raw != "" {
				if u, claims, err := authenticate(c, a, raw, timeout); err == nil {
					setIdentity(c, u, claims)
				}
			}
			return next(c)
		}
	}
}
