package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/iliyamo/industry-portal/internal/model"
)

const pqUniqueViolation = "23505"

const userColumns = `id, first_name, last_name, email, password, role, industry_type, phone,
	is_active, is_email_verified, login_attempts, lock_until, last_login, created_at, updated_at`

// NewUser carries the values for a registration insert.
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        *string
	Role         model.Role
	Industry     model.IndustryType
}

// LockState is the lockout bookkeeping after a failed login.
type LockState struct {
	Attempts  int
	LockUntil *time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.Industry,
		&u.Phone, &u.IsActive, &u.IsEmailVerified, &u.LoginAttempts, &u.LockUntil, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, nu NewUser) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password, phone, role, industry_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		nu.FirstName, nu.LastName, nu.Email, nu.PasswordHash, nu.Phone, nu.Role, nu.Industry)
	u, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id))
}

// recordFailedLoginSQL counts a failure in one statement so concurrent
// failures cannot overwrite each other.  SET expressions see the pre-update
// row: an expired lock restarts the count at 1, and reaching $3 sets
// lock_until to $4.
const recordFailedLoginSQL = `
UPDATE users SET
	login_attempts = CASE
		WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1
		ELSE login_attempts + 1 END,
	lock_until = CASE
		WHEN (CASE WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1
		           ELSE login_attempts + 1 END) >= $3 THEN $4
		WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN NULL
		ELSE lock_until END,
	updated_at = $2
WHERE id = $1
RETURNING login_attempts, lock_until`

// RecordFailedLogin increments the user's failed-login counter and locks the
// account for lockFor once maxAttempts is reached.
func (r *UserRepo) RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration, now time.Time) (LockState, error) {
	var st LockState
	err := r.DB.QueryRowContext(ctx, recordFailedLoginSQL, id, now, maxAttempts, now.Add(lockFor)).
		Scan(&st.Attempts, &st.LockUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return LockState{}, ErrNotFound
	}
	if err != nil {
		return LockState{}, fmt.Errorf("record failed login: %w", err)
	}
	return st, nil
}

// RecordSuccessfulLogin resets the lockout state, stamps last_login and
// returns the updated row.
func (r *UserRepo) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`UPDATE users SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = $2
		 WHERE id = $1
		 RETURNING `+userColumns, id, now))
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, now time.Time) error {
	return r.execOne(ctx, `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`, id, hash, now)
}

// UpdateIndustryType changes the user's discriminator.  Profile tables are
// not touched.
func (r *UserRepo) UpdateIndustryType(ctx context.Context, id uuid.UUID, t model.IndustryType, now time.Time) error {
	return r.execOne(ctx, `UPDATE users SET industry_type = $2, updated_at = $3 WHERE id = $1`, id, t, now)
}

func (r *UserRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
