package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/industry-portal/internal/model"
)

const (
	accessSecret  = "test-access-secret-key-1234567890"
	refreshSecret = "test-refresh-secret-key-1234567890"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(c *clock) *Service {
	return NewService(accessSecret, refreshSecret, 15*time.Minute, 30*24*time.Hour, c.now)
}

func testUser() model.User {
	return model.User{
		ID:       uuid.New(),
		Email:    "a@x.com",
		Role:     model.RoleUser,
		Industry: model.IndustryTour,
	}
}

func TestService_IssueAndVerifyPair(t *testing.T) {
	c := &clock{t: time.Now()}
	svc := newTestService(c)
	u := testUser()

	pair, err := svc.IssuePair(u)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access.Token)
	assert.NotEmpty(t, pair.Refresh.Token)
	assert.NotEqual(t, pair.Access.JTI, pair.Refresh.JTI)

	access, err := svc.VerifyAccess(pair.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, IdentityOf(u), access.Identity)
	assert.Equal(t, TypeAccess, access.TokenType)
	assert.Equal(t, pair.Access.JTI, access.RegisteredClaims.ID)
	assert.WithinDuration(t, c.t.Add(15*time.Minute), access.ExpiresAtTime(), time.Second)

	refresh, err := svc.VerifyRefresh(pair.Refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, IdentityOf(u), refresh.Identity)
	assert.Equal(t, TypeRefresh, refresh.TokenType)
	assert.WithinDuration(t, c.t.Add(30*24*time.Hour), refresh.ExpiresAtTime(), time.Second)
}

func TestService_SecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestService(&clock{t: time.Now()})
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(pair.Access.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = svc.VerifyAccess(pair.Refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestService_WrongTypeWithSameSecret(t *testing.T) {
	// Even with a shared secret the token_type claim keeps the kinds apart.
	svc := NewService(accessSecret, accessSecret, time.Minute, time.Hour, nil)
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.Refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestService_Expired(t *testing.T) {
	c := &clock{t: time.Now()}
	svc := newTestService(c)
	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	c.t = c.t.Add(16 * time.Minute)
	_, err = svc.VerifyAccess(pair.Access.Token)
	assert.ErrorIs(t, err, ErrExpired)

	// Refresh token is still inside its window.
	_, err = svc.VerifyRefresh(pair.Refresh.Token)
	assert.NoError(t, err)

	c.t = c.t.Add(31 * 24 * time.Hour)
	_, err = svc.VerifyRefresh(pair.Refresh.Token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestService_Garbage(t *testing.T) {
	svc := newTestService(&clock{t: time.Now()})

	_, err := svc.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	other := NewService("another-access-secret-0123456789", refreshSecret, time.Minute, time.Hour, nil)
	signed, err := other.IssueAccessToken(IdentityOf(testUser()))
	require.NoError(t, err)
	_, err = svc.VerifyAccess(signed.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestService_ReissueYieldsDistinctTokens(t *testing.T) {
	c := &clock{t: time.Now()}
	svc := newTestService(c)
	u := testUser()

	first, err := svc.IssuePair(u)
	require.NoError(t, err)
	second, err := svc.IssuePair(u)
	require.NoError(t, err)

	assert.NotEqual(t, first.Access.Token, second.Access.Token)
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)
}
