// Package user implements account registration and credential checks.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no account matches the given email or id.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when the password does not match or
	// the account is deactivated.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword is returned when the password is shorter than 6 characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrInvalidEmail is returned when the email address is missing or malformed.
	ErrInvalidEmail = errors.New("invalid email address")
)

// User is a registered account. Staff accounts may manage the catalog and
// read every order.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PhoneNumber  string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
