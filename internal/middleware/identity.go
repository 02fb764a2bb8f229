package middleware

// identity.go holds the context keys written by the auth middleware and the
// accessors handlers use to read them back.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/token"
)

const (
	ctxUser   = "user"
	ctxClaims = "claims"
	ctxUserID = "user_id"
)

func setIdentity(c echo.Context, u model.User, claims *token.Claims) {
	c.Set(ctxUser, u)
	c.Set(ctxClaims, claims)
	c.Set(ctxUserID, u.ID.String())
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}

// CurrentClaims returns the claims of the access token that authenticated
// the request.
func CurrentClaims(c echo.Context) (*token.Claims, bool) {
	cl, ok := c.Get(ctxClaims).(*token.Claims)
	return cl, ok && cl != nil
}

// userID returns the authenticated user's id, or "anon".
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
