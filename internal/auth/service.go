package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"iuran/internal/core"
	"iuran/internal/ledger"
)

// ErrInvalidCredentials covers both unknown usernames and bad passwords so
// login responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates users against the store and issues session tokens.
type Service struct {
	users    ledger.UserStore
	secret   string
	tokenTTL time.Duration
}

func NewService(users ledger.UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Session is the result of a successful login.
type Session struct {
	Token        string
	User         core.User
	Capabilities core.CapabilitySet
}

// Login checks the password and issues a token with the user's role baked
// in.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, u, s.tokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}

	slog.InfoContext(ctx, "User logged in",
		"username", u.Username,
		"role", string(u.Role))

	u.PasswordHash = ""
	return Session{
		Token:        token,
		User:         u,
		Capabilities: core.CapabilitiesFor(u.Role),
	}, nil
}

// Verify parses a bearer token and returns its claims.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	return ParseToken(s.secret, tokenStr)
}

// BootstrapAdmin creates the admin account on first start. It is a no-op
// when the username already exists or no password is configured.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		slog.WarnContext(ctx, "Admin bootstrap skipped: no password configured")
		return nil
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := s.users.CreateUser(ctx, core.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         core.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.InfoContext(ctx, "Admin user bootstrapped", "username", username)
	return nil
}
