// Package queue defines the account events published to the message broker
// and the publishers that deliver them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names.  One durable queue per event kind.
const (
	QueueUserRegistered  = "user.registered"
	QueueIndustryChanged = "user.industry_changed"
	QueueAccountLocked   = "user.locked"
)

// Event is any payload that knows which queue it belongs to.
type Event interface {
	QueueName() string
}

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	IndustryType string    `json:"industry_type"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (UserRegisteredEvent) QueueName() string { return QueueUserRegistered }

// IndustryChangedEvent is published when a user switches industry.  Profiles
// of the previous industry stay in place; consumers may archive them.
type IndustryChangedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

func (IndustryChangedEvent) QueueName() string { return QueueIndustryChanged }

// AccountLockedEvent is published when repeated login failures lock an account.
type AccountLockedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Attempts  int       `json:"attempts"`
	LockUntil time.Time `json:"lock_until"`
}

func (AccountLockedEvent) QueueName() string { return QueueAccountLocked }
