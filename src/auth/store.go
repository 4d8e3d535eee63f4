package auth

import (
	"context"
	"errors"

	"fintrack-server/src/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("email or username already exists")
	ErrDuplicateEmail     = errors.New("email already whitelisted")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLocked             = errors.New("user account is locked")
	ErrNotInvited         = errors.New("registration is restricted to invited emails")
)

// UserStore persists users and the registration whitelist.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// GetUserByLogin matches username or email, case-insensitively.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id int64, hash []byte) error
	UpdateUserLastLogin(ctx context.Context, id int64) error
	SetUserLocked(ctx context.Context, id int64, locked bool) error

	IsEmailWhitelisted(ctx context.Context, email string) (bool, error)
	CreateWhitelistedEmail(ctx context.Context, email string) (*models.WhitelistedEmail, error)
	ListWhitelistedEmails(ctx context.Context) ([]models.WhitelistedEmail, error)
	DeleteWhitelistedEmail(ctx context.Context, id int64) error
}
