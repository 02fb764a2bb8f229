package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/industry-portal/internal/apperr"
	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/token"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Authenticate(ctx context.Context, raw string) (model.User, *token.Claims, error) {
	args := m.Called(ctx, raw)
	u, _ := args.Get(0).(model.User)
	cl, _ := args.Get(1).(*token.Claims)
	return u, cl, args.Error(2)
}

func newCtx(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func TestTokenFromRequest_HeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer from-header")
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
	c, _ := newCtx(req)
	assert.Equal(t, "from-header", TokenFromRequest(c))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
	c, _ = newCtx(req)
	assert.Equal(t, "from-cookie", TokenFromRequest(c))

	c, _ = newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "", TokenFromRequest(c))
}

func TestAuthenticate_BindsUser(t *testing.T) {
	a := &mockAuth{}
	u := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	claims := &token.Claims{TokenType: token.TypeAccess}
	a.On("Authenticate", mock.Anything, "tok").Return(u, claims, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	c, _ := newCtx(req)

	var seen model.User
	err := Authenticate(a, time.Second)(func(c echo.Context) error {
		seen, _ = CurrentUser(c)
		cl, ok := CurrentClaims(c)
		assert.True(t, ok)
		assert.Same(t, claims, cl)
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, u.ID, seen.ID)
	assert.Equal(t, u.ID.String(), userID(c))
}

func TestAuthenticate_PropagatesError(t *testing.T) {
	a := &mockAuth{}
	a.On("Authenticate", mock.Anything, "").Return(nil, nil, apperr.ErrUnauthenticated)

	c, _ := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	err := Authenticate(a, time.Second)(ok)(c)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthenticate_BoundsLookup(t *testing.T) {
	deadlineWithin := func(limit time.Duration) interface{} {
		return mock.MatchedBy(func(ctx context.Context) bool {
			d, ok := ctx.Deadline()
			return ok && time.Until(d) <= limit
		})
	}

	a := &mockAuth{}
	a.On("Authenticate", deadlineWithin(200*time.Millisecond), "tok").
		Return(model.User{ID: uuid.New()}, &token.Claims{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	c, _ := newCtx(req)
	require.NoError(t, Authenticate(a, 200*time.Millisecond)(ok)(c))
	a.AssertExpectations(t)

	a = &mockAuth{}
	a.On("Authenticate", deadlineWithin(DefaultAuthTimeout), "tok").
		Return(model.User{ID: uuid.New()}, &token.Claims{}, nil)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	c, _ = newCtx(req)
	require.NoError(t, OptionalAuthenticate(a, 0)(ok)(c))
	a.AssertExpectations(t)
}

func TestOptionalAuthenticate(t *testing.T) {
	a := &mockAuth{}
	a.On("Authenticate", mock.Anything, "bad").Return(nil, nil, apperr.ErrInvalidToken)

	// No token: Authenticate is never called.
	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, OptionalAuthenticate(a, time.Second)(ok)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Bad token: request continues anonymously.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer bad")
	c, rec = newCtx(req)
	require.NoError(t, OptionalAuthenticate(a, time.Second)(func(c echo.Context) error {
		_, found := CurrentUser(c)
		assert.False(t, found)
		return ok(c)
	})(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	a.AssertNumberOfCalls(t, "Authenticate", 1)
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleAdmin, model.RoleModerator)

	c, _ := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, mw(ok)(c), apperr.ErrUnauthenticated)

	c, _ = newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	setIdentity(c, model.User{ID: uuid.New(), Role: model.RoleUser}, nil)
	err := mw(ok)(c)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Access denied. Required role: admin or moderator", apperr.From(err).Message)

	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	setIdentity(c, model.User{ID: uuid.New(), Role: model.RoleModerator}, nil)
	require.NoError(t, mw(ok)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireIndustry(t *testing.T) {
	mw := RequireIndustry(model.IndustryTour)

	c, _ := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	setIdentity(c, model.User{ID: uuid.New(), Industry: model.IndustryTravel}, nil)
	assert.ErrorIs(t, mw(ok)(c), apperr.ErrForbidden)

	c, _ = newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	setIdentity(c, model.User{ID: uuid.New(), Industry: model.IndustryTour}, nil)
	assert.NoError(t, mw(ok)(c))
}
