// Package service holds the authentication engine and the industry
// dispatcher.  Services return *apperr.Error values; mapping to HTTP status
// codes happens in the handler package.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/industry-portal/internal/apperr"
	"github.com/iliyamo/industry-portal/internal/metrics"
	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/queue"
	"github.com/iliyamo/industry-portal/internal/repository"
	"github.com/iliyamo/industry-portal/internal/token"
	"github.com/iliyamo/industry-portal/internal/utils"
)

// UserStore is the persistence the auth engine needs.  *repository.UserRepo
// satisfies it.
type UserStore interface {
	Create(ctx context.Context, nu repository.NewUser) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration, now time.Time) (repository.LockState, error)
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time) (model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, now time.Time) error
	UpdateIndustryType(ctx context.Context, id uuid.UUID, t model.IndustryType, now time.Time) error
}

// Denylist records revoked token ids until the token would have expired.
// RevokeOnce is atomic and reports whether the caller revoked the id first;
// it makes refresh tokens single use under concurrency.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	RevokeOnce(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// LockoutPolicy is the failed-login threshold and how long the lock lasts.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

// DefaultLockout locks an account for two hours after five failures.
var DefaultLockout = LockoutPolicy{MaxAttempts: 5, Duration: 2 * time.Hour}

// AuthDeps groups the collaborators of AuthService.  Events, Metrics, Log
// and Now are optional.
type AuthDeps struct {
	Users    UserStore
	Tokens   *token.Service
	Hasher   utils.Hasher
	Denylist Denylist
	Lockout  LockoutPolicy
	Events   queue.Publisher
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Now      func() time.Time
}

// AuthService implements registration, login, token refresh, request
// authentication, password change and logout.
type AuthService struct {
	users    UserStore
	tokens   *token.Service
	hasher   utils.Hasher
	denylist Denylist
	lockout  LockoutPolicy
	events   queue.Publisher
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(d AuthDeps) *AuthService {
	s := &AuthService{
		users:    d.Users,
		tokens:   d.Tokens,
		hasher:   d.Hasher,
		denylist: d.Denylist,
		lockout:  d.Lockout,
		events:   d.Events,
		metrics:  d.Metrics,
		log:      d.Log,
		now:      d.Now,
	}
	if s.lockout.MaxAttempts <= 0 || s.lockout.Duration <= 0 {
		s.lockout = DefaultLockout
	}
	if s.events == nil {
		s.events = queue.NopPublisher{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ----- inputs / results -----

type RegisterInput struct {
	FirstName    string  `json:"firstName" validate:"required,max=50"`
	LastName     string  `json:"lastName" validate:"required,max=50"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	Password     string  `json:"password" validate:"required,min=6,max=128"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	IndustryType string  `json:"industryType" validate:"omitempty,oneof=tour travel logistics other"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   model.User
	Tokens token.Pair
}

// AccessTTL is the lifetime shared by the access token and its cookie.
func (s *AuthService) AccessTTL() time.Duration { return s.tokens.AccessTTL() }

// normalizeEmail trims surrounding whitespace.  Case is preserved: emails are
// stored and matched exactly as given.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// ----- operations -----

// Register creates an account and issues its first token pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := checkStruct(in); err != nil {
		return AuthResult{}, err
	}
	industry := model.IndustryOther
	if in.IndustryType != "" {
		industry = model.IndustryType(in.IndustryType)
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return AuthResult{}, apperr.ErrDuplicateEmail
	case errors.Is(err, repository.ErrNotFound):
	default:
		s.log.Error("register: user lookup failed", zap.Error(err))
		return AuthResult{}, apperr.ErrServiceUnavailable.WithCause(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, apperr.ErrInternal.WithCause(err)
	}
	u, err := s.users.Create(ctx, repository.NewUser{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Role:         model.RoleUser,
		Industry:     industry,
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return AuthResult{}, apperr.ErrDuplicateEmail
	}
	if err != nil {
		s.log.Error("register: insert failed", zap.Error(err))
		return AuthResult{}, apperr.ErrInternal.WithCause(err)
	}

	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return AuthResult{}, apperr.ErrInternal.WithCause(err)
	}

	s.log.Info("user registered", zap.String("user_id", u.ID.String()), zap.String("industry_type", string(u.Industry)))
	s.metrics.ObserveRegistration(string(u.Industry))
	s.publish(ctx, queue.UserRegisteredEvent{
		UserID:       u.ID,
		Email:        u.Email,
		IndustryType: string(u.Industry),
		Role:         string(u.Role),
		RegisteredAt: u.CreatedAt,
	})
	return AuthResult{User: u, Tokens: pair}, nil
}

// Login verifies credentials under the lockout policy.  An unknown email and
// a wrong password produce the same error, and both cost one bcrypt compare.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := checkStruct(in); err != nil {
		return AuthResult{}, err
	}
	now := s.now()

	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		_ = s.hasher.Compare(s.dummy(), in.Password)
		s.metrics.ObserveLogin(metrics.LoginFailure)
		return AuthResult{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		s.log.Error("login: user lookup failed", zap.Error(err))
		return AuthResult{}, apperr.ErrServiceUnavailable.WithCause(err)
	}

	if u.IsLocked(now) {
		s.metrics.ObserveLogin(metrics.LoginLocked)
		return AuthResult{}, apperr.ErrAccountLocked
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, utils.ErrPasswordMismatch) {
			s.log.Error("login: stored hash unusable", zap.String("user_id", u.ID.String()), zap.Error(err))
			return AuthResult{}, apperr.ErrInternal.WithCause(err)
		}
		s.metrics.ObserveLogin(metrics.LoginFailure)
		s.recordFailure(ctx, u, now)
		return AuthResult{}, apperr.ErrInvalidCredentials
	}

	if !u.IsActive {
		s.metrics.ObserveLogin(metrics.LoginInactive)
		return AuthResult{}, apperr.ErrAccountDeactivated
	}

	u, err = s.users.RecordSuccessfulLogin(ctx, u.ID, now)
	if err != nil {
		s.log.Error("login: reset lockout failed", zap.Error(err))
		return AuthResult{}, apperr.ErrInternal.WithCause(err)
	}
	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return AuthResult{}, apperr.ErrInternal.WithCause(err)
	}

	s.metrics.ObserveLogin(metrics.LoginSuccess)
	s.log.Info("user logged in", zap.String("user_id", u.ID.String()))
	return AuthResult{User: u, Tokens: pair}, nil
}

// recordFailure bumps the attempt counter.  Errors are logged; the caller
// still answers InvalidCredentials.
func (s *AuthService) recordFailure(ctx context.Context, u model.User, now time.Time) {
	st, err := s.users.RecordFailedLogin(ctx, u.ID, s.lockout.MaxAttempts, s.lockout.Duration, now)
	if err != nil {
		s.log.Error("login: record failure", zap.String("user_id", u.ID.String()), zap.Error(err))
		return
	}
	if st.LockUntil == nil || !st.LockUntil.After(now) {
		return
	}
	s.log.Warn("account locked",
		zap.String("user_id", u.ID.String()),
		zap.Int("attempts", st.Attempts),
		zap.Time("lock_until", *st.LockUntil))
	s.metrics.ObserveLockout()
	s.publish(ctx, queue.AccountLockedEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Attempts:  st.Attempts,
		LockUntil: *st.LockUntil,
	})
}

// Refresh exchanges a refresh token for a new pair built from the current
// user row.  The presented refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, raw string) (AuthResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AuthResult{}, apperr.ErrInvalidRefreshToken.WithMessage("Refresh token is required")
	}
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return AuthResult{}, apperr.ErrInvalidRefreshToken.WithCause(err)
	}
	if s.revoked(ctx, claims.RegisteredClaims.ID) {
		return AuthResult{}, apperr.ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, apperr.ErrInvalidRefreshToken
	}
	if err != nil {
		return AuthResult{}, apperr.ErrServiceUnavailable.WithCause(err)
	}
	if !u.IsActive {
		return AuthResult{}, apperr.ErrInvalidRefreshToken
	}

	if !s.claim(ctx, claims) {
		return AuthResult{}, apperr.ErrInvalidRefreshToken
	}
	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return AuthResult{}, apperr.ErrInternal.WithCause(err)
	}
	return AuthResult{User: u, Tokens: pair}, nil
}

// Authenticate resolves an access token to the current user row.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.User, *token.Claims, error) {
	if raw == "" {
		return model.User{}, nil, apperr.ErrUnauthenticated
	}
	claims, err := s.tokens.VerifyAccess(raw)
	if errors.Is(err, token.ErrExpired) {
		return model.User{}, nil, apperr.ErrTokenExpired
	}
	if err != nil {
		return model.User{}, nil, apperr.ErrInvalidToken.WithCause(err)
	}
	if s.revoked(ctx, claims.RegisteredClaims.ID) {
		return model.User{}, nil, apperr.ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, nil, apperr.ErrInvalidToken
	}
	if err != nil {
		return model.User{}, nil, apperr.ErrServiceUnavailable.WithCause(err)
	}
	if !u.IsActive {
		return model.User{}, nil, apperr.ErrAccountDeactivated
	}
	return u, claims, nil
}

// ChangePassword re-hashes the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return apperr.ErrServiceUnavailable.WithCause(err)
	}

	if err := s.hasher.Compare(u.PasswordHash, in.CurrentPassword); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return apperr.ErrIncorrectPassword
		}
		return apperr.ErrInternal.WithCause(err)
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.ErrInternal.WithCause(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash, s.now()); err != nil {
		return apperr.ErrInternal.WithCause(err)
	}
	s.log.Info("password changed", zap.String("user_id", u.ID.String()))
	return nil
}

// Logout revokes the access token behind access and, when it belongs to the
// same user, the given refresh token.  An unusable refresh token is ignored.
func (s *AuthService) Logout(ctx context.Context, access *token.Claims, refreshRaw string) error {
	if access == nil {
		return apperr.ErrUnauthenticated
	}
	if s.denylist == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, access.RegisteredClaims.ID, access.ExpiresAtTime()); err != nil {
		s.log.Error("logout: revoke access token", zap.Error(err))
		return apperr.ErrServiceUnavailable.WithCause(err)
	}
	s.metrics.ObserveRevocation()

	if refreshRaw = strings.TrimSpace(refreshRaw); refreshRaw != "" {
		rc, err := s.tokens.VerifyRefresh(refreshRaw)
		if err == nil && rc.UserID == access.UserID {
			s.revoke(ctx, rc)
		}
	}
	s.log.Info("user logged out", zap.String("user_id", access.UserID.String()))
	return nil
}

// ----- helpers -----

// revoked consults the denylist.  A denylist outage is logged and treated as
// "not revoked" so that logins keep working while Redis is down.
func (s *AuthService) revoked(ctx context.Context, jti string) bool {
	if s.denylist == nil || jti == "" {
		return false
	}
	ok, err := s.denylist.IsRevoked(ctx, jti)
	if err != nil {
		s.log.Warn("denylist lookup failed", zap.Error(err))
		return false
	}
	return ok
}

func (s *AuthService) revoke(ctx context.Context, c *token.Claims) {
	if s.denylist == nil {
		return
	}
	if err := s.denylist.Revoke(ctx, c.RegisteredClaims.ID, c.ExpiresAtTime()); err != nil {
		s.log.Warn("denylist revoke failed", zap.String("token_type", c.TokenType), zap.Error(err))
		return
	}
	s.metrics.ObserveRevocation()
}

// claim revokes a refresh token and reports whether this caller was the one
// to do so.  A denylist outage lets the refresh through, like revoked.
func (s *AuthService) claim(ctx context.Context, c *token.Claims) bool {
	if s.denylist == nil {
		return true
	}
	first, err := s.denylist.RevokeOnce(ctx, c.RegisteredClaims.ID, c.ExpiresAtTime())
	if err != nil {
		s.log.Warn("denylist claim failed", zap.Error(err))
		return true
	}
	if first {
		s.metrics.ObserveRevocation()
	}
	return first
}

func (s *AuthService) publish(ctx context.Context, ev queue.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", zap.String("queue", ev.QueueName()), zap.Error(err))
	}
}

// dummy returns a hash used to equalize timing for unknown emails.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
