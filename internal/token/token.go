// Package token issues and verifies the JWT access/refresh pair.  Access and
// refresh tokens are signed with different secrets and carry a token_type
// claim, so neither can be accepted in place of the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/industry-portal/internal/model"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrInvalidSignature covers every verification failure other than
	// expiry: bad signature, wrong secret, malformed token, wrong token type.
	ErrInvalidSignature = errors.New("token: invalid signature")
	// ErrExpired is returned for a well-signed token past its expiry.
	ErrExpired = errors.New("token: expired")
)

// Identity is the claim snapshot embedded in both tokens.
type Identity struct {
	UserID       uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	Role         model.Role         `json:"role"`
	IndustryType model.IndustryType `json:"industryType"`
}

// IdentityOf snapshots the claim set of u.
func IdentityOf(u model.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role, IndustryType: u.Industry}
}

// Claims is the full JWT payload.  RegisteredClaims.ID (jti) is unique per
// token and is what the denylist keys on.
type Claims struct {
	Identity
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Signed is a serialized token with the metadata callers need for cookies
// and revocation.
type Signed struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// Pair is an access token and a refresh token issued from the same identity.
type Pair struct {
	Access  Signed
	Refresh Signed
}

// Service signs and verifies tokens.  It holds no mutable state.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
	parser        *jwt.Parser
}

// NewService builds a Service.  now may be nil, in which case time.Now is used.
func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(func() time.Time { return now() }),
		),
	}
}

// AccessTTL is the canonical access-token lifetime, also used for the cookie.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccessToken signs id with the access secret.
func (s *Service) IssueAccessToken(id Identity) (Signed, error) {
	return s.issue(id, TypeAccess, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs id with the refresh secret.
func (s *Service) IssueRefreshToken(id Identity) (Signed, error) {
	return s.issue(id, TypeRefresh, s.refreshSecret, s.refreshTTL)
}

// IssuePair issues both tokens from the same claim snapshot of u.
func (s *Service) IssuePair(u model.User) (Pair, error) {
	id := IdentityOf(u)
	access, err := s.IssueAccessToken(id)
	if err != nil {
		return Pair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.IssueRefreshToken(id)
	if err != nil {
		return Pair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(raw string) (*Claims, error) {
	return s.verify(raw, TypeAccess, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *Service) VerifyRefresh(raw string) (*Claims, error) {
	return s.verify(raw, TypeRefresh, s.refreshSecret)
}

func (s *Service) issue(id Identity, typ string, secret []byte, ttl time.Duration) (Signed, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	jti := uuid.NewString()
	claims := Claims{
		Identity:  id,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Signed{}, err
	}
	// NumericDate truncates to seconds; report what the token actually says.
	return Signed{Token: signed, JTI: jti, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) verify(raw, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidSignature, typ, claims.TokenType)
	}
	return claims, nil
}

// ExpiresAtTime returns the expiry of c, or the zero time if it has none.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
