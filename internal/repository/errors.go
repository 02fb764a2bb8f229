// Package repository contains the Postgres and Redis backed stores.  The
// sentinel errors below let the service layer tell a missing row or a
// uniqueness clash apart from infrastructure failures.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by UserRepo.Create when the email is taken.
var ErrEmailExists = errors.New("email already exists")
