// Package auth registers and authenticates users and issues the session
// tokens the API middleware verifies.
package auth

import (
	"context"
	"errors"
	"fmt"
		"strings"

	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users      UserStore
	issuer     *Issuer
	inviteOnly bool
	cost       int
}

func NewService(users UserStore, issuer *Issuer, inviteOnly bool) *Service {
	return &Service{users: users, issuer: issuer, inviteOnly: inviteOnly, cost: bcrypt.DefaultCost}
}

func (s *Service) Issuer() *Issuer {
	return s.issuer
}

func validatePassword(field, password string) error {
	if !util.ValidatePassword(password) {
		return &ledger.ValidationError{
			Field:   field,
			Message: "must be at least 8 characters with uppercase, lowercase, digit, and special character",
		}
	}
	return nil
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if !util.ValidateEmail(email) {
		return nil, &ledger.ValidationError{Field: "email", Message: "invalid email format"}
	}
	if !util.ValidateUsername(username) {
		return nil, &ledger.ValidationError{Field: "username", Message: "must be between 3 and 30 characters"}
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	if s.inviteOnly {
		allowed, err := s.users.IsEmailWhitelisted(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check whitelist: %w", err)
		}
		if !allowed {
			logging.FromContext(ctx).Warn("registration denied for non-whitelisted email", "email", email)
			return nil, ErrNotInvited
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.respond(user)
}

func (s *Service) Login(ctx context.Context, login, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByLogin(ctx, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Locked {
		return nil, ErrLocked
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.users.UpdateUserLastLogin(ctx, user.ID); err != nil {
		logging.FromContext(ctx).Error("failed to update last_login", "user_id", user.ID, "err", err)
	}
	logging.FromContext(ctx).Info("successful login", "user_id", user.ID, "username", user.Username)
	return s.respond(user)
}

func (s *Service) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.issuer.Issue(user.ID, user.Username, user.SuperAdmin)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.issuer.Revoke(ctx, claims)
}

// Authenticate verifies a bearer token and rejects it once its user has
// been locked or removed, even before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.issuer.Parse(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if user.Locked {
		return nil, ErrLocked
	}
	return claims, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword("new_password", next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdateUserPassword(ctx, userID, hash)
}

func (s *Service) SetLocked(ctx context.Context, userID int64, locked bool) error {
	if err := s.users.SetUserLocked(ctx, userID, locked); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("user lock state changed", "user_id", userID, "locked", locked)
	return nil
}

func (s *Service) WhitelistEmail(ctx context.Context, email string) (*models.WhitelistedEmail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !util.ValidateEmail(email) {
		return nil, &ledger.ValidationError{Field: "email", Message: "invalid email format"}
	}
	return s.users.CreateWhitelistedEmail(ctx, email)
}

func (s *Service) WhitelistedEmails(ctx context.Context) ([]models.WhitelistedEmail, error) {
	return s.users.ListWhitelistedEmails(ctx)
}

func (s *Service) RemoveWhitelistedEmail(ctx context.Context, id int64) error {
	return s.users.DeleteWhitelistedEmail(ctx, id)
}
