package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role stored in users.role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// User represents a row of the `users` table.  The struct is used by the
// repository and service layers; HTTP responses use View so that the
// password hash and lockout bookkeeping never leave the process.
//
// Fields:
//  ID              – primary key (UUID).
//  Email           – unique login name.
//  PasswordHash    – bcrypt hash.
//  Industry        – the discriminator selecting profile/dashboard logic.
//  LoginAttempts   – consecutive failed logins since the last success.
//  LockUntil       – while in the future, logins are rejected outright.
type User struct {
	ID              uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	PasswordHash    string
	Role            Role
	Industry        IndustryType
	Phone           *string
	IsActive        bool
	IsEmailVerified bool
	LoginAttempts   int
	LockUntil       *time.Time
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLocked reports whether the account is locked at time now.
func (u User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// UserView is the client-facing representation of a User.
type UserView struct {
	ID              uuid.UUID    `json:"id"`
	FirstName       string       `json:"firstName"`
	LastName        string       `json:"lastName"`
	Email           string       `json:"email"`
	Role            Role         `json:"role"`
	IndustryType    IndustryType `json:"industryType"`
	Phone           *string      `json:"phone"`
	IsActive        bool         `json:"isActive"`
	IsEmailVerified bool         `json:"isEmailVerified"`
	LastLogin       *time.Time   `json:"lastLogin"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// View strips credentials and lockout state from u.
func (u User) View() UserView {
	return UserView{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		IndustryType:    u.Industry,
		Phone:           u.Phone,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
