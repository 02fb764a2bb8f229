package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/industry-portal/internal/apperr"
	"github.com/iliyamo/industry-portal/internal/model"
)

// RequireRole allows the request through only when the authenticated user
// has one of roles.  It must run after Authenticate.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = true
		names = append(names, string(r))
	}
	denied := apperr.ErrForbidden.WithMessage("Access denied. Required role: " + strings.Join(names, " or "))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return apperr.ErrUnauthenticated.WithMessage("Access denied. Please authenticate first.")
			}
			if !allowed[u.Role] {
				return denied
			}
			return next(c)
		}
	}
}

// RequireIndustry allows the request through only for users of one of the
// given industries.
func RequireIndustry(types ...model.IndustryType) echo.MiddlewareFunc {
	allowed := make(map[model.IndustryType]bool, len(types))
	names := make([]string, 0, len(types))
	for _, t := range types {
		allowed[t] = true
		names = append(names, string(t))
	}
	denied := apperr.ErrForbidden.WithMessage("Access denied. This dashboard is for " + strings.Join(names, ", ") + " industry only.")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return apperr.ErrUnauthenticated.WithMessage("Access denied. Please authenticate first.")
			}
			if !allowed[u.Industry] {
				return denied
			}
			return next(c)
		}
	}
}
